package mock

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/sagealpha/backend/embedder"
)

type mockEmbedder struct {
	options embedder.Options
}

// Embed returns a deterministic pseudo-random vector seeded from the text, so
// identical inputs map to identical vectors across calls and processes.
func (e *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.options.Width)
	for i := range vec {
		vec[i] = rng.Float32() * 0.1
	}

	return vec, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	return &mockEmbedder{
		options: options,
	}
}
