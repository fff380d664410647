package embedder

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func TestResilientPassesThrough(t *testing.T) {
	inner := &stubEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	e := NewResilient(inner, 3, time.Second)

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Fatalf("got %v, want inner vector", vec)
	}
	if inner.calls != 1 {
		t.Fatalf("inner called %d times, want 1", inner.calls)
	}
}

func TestResilientZeroVectorOnFailure(t *testing.T) {
	inner := &stubEmbedder{err: errors.New("upstream down")}
	e := NewResilient(inner, 4, time.Second)

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed must not fail outward, got: %v", err)
	}
	if len(vec) != 4 {
		t.Fatalf("got width %d, want 4", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("component %d = %v, want 0", i, v)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("inner called %d times, want 2 (one retry)", inner.calls)
	}
}

func TestResilientDefaultWidth(t *testing.T) {
	inner := &stubEmbedder{err: errors.New("upstream down")}
	e := NewResilient(inner, 0, 0)

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed must not fail outward, got: %v", err)
	}
	if len(vec) != DefaultWidth {
		t.Fatalf("got width %d, want %d", len(vec), DefaultWidth)
	}
}
