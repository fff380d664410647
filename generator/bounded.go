package generator

import (
	"context"
	"time"
)

type boundedGenerator struct {
	inner   Generator
	timeout time.Duration
}

func (g *boundedGenerator) Complete(ctx context.Context, messages []Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return g.inner.Complete(callCtx, messages)
}

// NewBounded wraps a generator with a per-call timeout so a stalled
// completion cannot hold a request open indefinitely.
func NewBounded(inner Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &boundedGenerator{
		inner:   inner,
		timeout: timeout,
	}
}
