package embedder

import (
	"context"
	"log/slog"
	"time"
)

type resilientEmbedder struct {
	inner   Embedder
	width   int
	timeout time.Duration
}

// Embed never fails outward. A degraded zero vector is preferable to
// blocking chat or report generation on an embedding outage.
func (e *resilientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		vec, err := e.inner.Embed(callCtx, text)
		cancel()

		if err == nil {
			return vec, nil
		}

		lastErr = err
		slog.WarnContext(ctx, "embedding call failed", "attempt", attempt, "error", err)
	}

	slog.ErrorContext(ctx, "embedding degraded to zero vector", "error", lastErr)

	return make([]float32, e.width), nil
}

// NewResilient wraps an embedder with a per-call timeout, one retry, and a
// zero-vector fallback of the given width.
func NewResilient(inner Embedder, width int, timeout time.Duration) Embedder {
	if width <= 0 {
		width = DefaultWidth
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &resilientEmbedder{
		inner:   inner,
		width:   width,
		timeout: timeout,
	}
}
