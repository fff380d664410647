package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sagealpha/backend/embedder"
	"github.com/sagealpha/backend/vectorstore"
)

type Source struct {
	DocID  string  `json:"doc_id"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

type Result struct {
	Context string   `json:"context"`
	Sources []Source `json:"sources"`
}

// Pipeline turns a raw user query into a bounded, attributed context block.
type Pipeline struct {
	embedder embedder.Embedder
	store    vectorstore.Store
	options  Options
}

// Retrieve embeds the query, searches the store, and applies the relevance
// gate: matches are included only when the single best score exceeds the
// threshold. An empty result means "no relevant knowledge found", never an
// error the caller has to branch on.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) (Result, error) {
	if k <= 0 {
		k = p.options.TopK
	}

	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		// resilient embedders absorb their own failures; anything that still
		// errors here degrades to empty context
		slog.WarnContext(ctx, "query embedding failed", "error", err)
		return Result{}, nil
	}

	matches, err := p.store.Search(ctx, vec, k)
	if err != nil {
		return Result{}, fmt.Errorf("vector search: %w", err)
	}

	if len(matches) == 0 || matches[0].Score <= p.options.Threshold {
		return Result{}, nil
	}

	blocks := make([]string, 0, len(matches))
	sources := make([]Source, 0, len(matches))

	for _, m := range matches {
		blocks = append(blocks, fmt.Sprintf("Source: %s\n%s", m.Source(), m.Text))
		sources = append(sources, Source{
			DocID:  m.DocID,
			Source: m.Source(),
			Score:  m.Score,
		})
	}

	text := strings.Join(blocks, "\n\n")
	if len(text) > p.options.ContextBudget {
		text = text[:p.options.ContextBudget]
	}

	return Result{
		Context: text,
		Sources: sources,
	}, nil
}

func New(e embedder.Embedder, s vectorstore.Store, opts ...Option) *Pipeline {
	options := NewOptions(opts...)

	return &Pipeline{
		embedder: e,
		store:    s,
		options:  options,
	}
}
