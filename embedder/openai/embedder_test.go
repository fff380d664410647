package openai

import "testing"

func TestEmbeddingModelGuard(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "text-embedding-3-small"},
		{"gpt-4o-mini", "text-embedding-3-small"},
		{"my-chat-deployment", "text-embedding-3-small"},
		{"text-embedding-3-small", "text-embedding-3-small"},
		{"text-embedding-3-large", "text-embedding-3-large"},
	}

	for _, tc := range cases {
		if got := embeddingModel(tc.in); got != tc.want {
			t.Errorf("embeddingModel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
