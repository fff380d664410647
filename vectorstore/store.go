package vectorstore

import (
	"context"
	"math"
)

const DefaultTopK = 5

type Store interface {
	Add(ctx context.Context, docs ...Document) error
	Search(ctx context.Context, query []float32, k int) ([]Match, error)
	Save(ctx context.Context) error
	Len() int
}

// CosineSimilarity returns 0.0 for absent or mismatched vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	// epsilon keeps the denominator away from zero
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + 1e-9)
}
