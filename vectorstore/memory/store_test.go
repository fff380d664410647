package memory

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagealpha/backend/vectorstore"
)

func testDocs() []vectorstore.Document {
	return []vectorstore.Document{
		{DocID: "d1", Text: "Revenue grew 10%.", Meta: map[string]any{"source": "10-K"}, Embedding: []float32{1, 0}},
		{DocID: "d2", Text: "Margins compressed.", Meta: map[string]any{"source": "10-Q"}, Embedding: []float32{0, 1}},
		{DocID: "d3", Text: "Guidance raised.", Meta: map[string]any{"source": "8-K"}, Embedding: []float32{0.7, 0.7}},
	}
}

func TestSearchOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore(vectorstore.WithLocation(t.TempDir()))

	if err := store.Add(ctx, testDocs()...); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}

	if matches[0].DocID != "d1" || matches[1].DocID != "d3" || matches[2].DocID != "d2" {
		t.Fatalf("wrong order: %s, %s, %s", matches[0].DocID, matches[1].DocID, matches[2].DocID)
	}

	if math.Abs(matches[0].Score-1) > 1e-6 {
		t.Fatalf("best score = %v, want ~1", matches[0].Score)
	}

	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatalf("scores not descending at %d: %v > %v", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestSearchClampsK(t *testing.T) {
	ctx := context.Background()
	store := NewStore(vectorstore.WithLocation(t.TempDir()))

	if err := store.Add(ctx, testDocs()...); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	// k larger than the corpus returns everything.
	matches, err = store.Search(ctx, []float32{1, 0}, 50)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
}

func TestSearchEmptyCorpus(t *testing.T) {
	store := NewStore(vectorstore.WithLocation(t.TempDir()))

	matches, err := store.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches from empty corpus, want 0", len(matches))
	}
}

func TestSearchTieBreak(t *testing.T) {
	ctx := context.Background()
	store := NewStore(vectorstore.WithLocation(t.TempDir()))

	docs := []vectorstore.Document{
		{DocID: "z", Text: "z", Embedding: []float32{1, 0}},
		{DocID: "a", Text: "a", Embedding: []float32{1, 0}},
	}
	if err := store.Add(ctx, docs...); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	matches, err := store.Search(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if matches[0].DocID != "a" || matches[1].DocID != "z" {
		t.Fatalf("tie not broken by doc id: %s, %s", matches[0].DocID, matches[1].DocID)
	}
}

func TestAddRejectsMissingEmbedding(t *testing.T) {
	store := NewStore(vectorstore.WithLocation(t.TempDir()))

	err := store.Add(context.Background(), vectorstore.Document{DocID: "bad", Text: "no vector"})
	if err == nil {
		t.Fatal("expected error for document without embedding")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store := NewStore(vectorstore.WithLocation(dir))
	if err := store.Add(ctx, testDocs()...); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewStore(vectorstore.WithLocation(dir))
	if reloaded.Len() != 3 {
		t.Fatalf("reloaded %d documents, want 3", reloaded.Len())
	}

	matches, err := reloaded.Search(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].DocID != "d1" {
		t.Fatalf("round trip lost ordering: %+v", matches)
	}
	if matches[0].Text != "Revenue grew 10%." {
		t.Fatalf("round trip lost text: %q", matches[0].Text)
	}
	if matches[0].Source() != "10-K" {
		t.Fatalf("round trip lost source: %q", matches[0].Source())
	}
}

func TestLoadCorruptMetadata(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "embeddings.json"), []byte("[[1,0]]"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(vectorstore.WithLocation(dir))
	if store.Len() != 0 {
		t.Fatalf("corrupt metadata should leave the store empty, got %d docs", store.Len())
	}
}

func TestLoadOutOfStepFiles(t *testing.T) {
	dir := t.TempDir()

	meta := `[{"doc_id":"d1","text":"one","meta":{}},{"doc_id":"d2","text":"two","meta":{}}]`
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "embeddings.json"), []byte("[[1,0]]"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(vectorstore.WithLocation(dir))
	if store.Len() != 0 {
		t.Fatalf("mismatched files should leave the store empty, got %d docs", store.Len())
	}
}

func TestLoadMissingFilesStartsEmpty(t *testing.T) {
	store := NewStore(vectorstore.WithLocation(t.TempDir()))
	if store.Len() != 0 {
		t.Fatalf("fresh store should be empty, got %d docs", store.Len())
	}
}
