package generator

import (
	"context"
	"errors"
	"testing"
	"time"
)

type deadlineCheckGenerator struct {
	hadDeadline bool
}

func (g *deadlineCheckGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	_, g.hadDeadline = ctx.Deadline()
	return "ok", nil
}

type blockingGenerator struct{}

func (blockingGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(time.Minute):
		return "too late", nil
	}
}

func TestBoundedSetsDeadline(t *testing.T) {
	inner := &deadlineCheckGenerator{}
	gen := NewBounded(inner, time.Second)

	reply, err := gen.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q, want %q", reply, "ok")
	}
	if !inner.hadDeadline {
		t.Error("inner call had no deadline")
	}
}

func TestBoundedCancelsStalledCompletion(t *testing.T) {
	gen := NewBounded(blockingGenerator{}, 10*time.Millisecond)

	start := time.Now()
	_, err := gen.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("completion took %v to cancel", elapsed)
	}
}
