package mock

import (
	"context"
	"testing"

	"github.com/sagealpha/backend/generator"
)

func TestCompleteEchoesLastMessage(t *testing.T) {
	g := NewGenerator()

	messages := []generator.Message{
		{Role: generator.RoleSystem, Content: "You are SageAlpha."},
		{Role: generator.RoleUser, Content: "What is the outlook for semiconductors?"},
	}

	got, err := g.Complete(context.Background(), messages)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	want := `[MOCK RESPONSE] You asked: "What is the outlook for semiconductors?". SageAlpha backend is running! Real LLM not configured.`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCompleteDeterministic(t *testing.T) {
	g := NewGenerator()
	ctx := context.Background()

	messages := []generator.Message{{Role: generator.RoleUser, Content: "same input"}}

	first, err := g.Complete(ctx, messages)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	second, err := g.Complete(ctx, messages)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if first != second {
		t.Fatalf("responses differ: %q vs %q", first, second)
	}
}
