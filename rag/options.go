package rag

import (
	"context"

	"github.com/sagealpha/backend/vectorstore"
)

const (
	// DefaultThreshold is the relevance gate on the best match's score.
	DefaultThreshold = 0.35
	// DefaultContextBudget is the chat context character budget.
	DefaultContextBudget = 6000
)

type Option func(*Options)

type Options struct {
	TopK          int
	Threshold     float64
	ContextBudget int
	Context       context.Context
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithThreshold(t float64) Option {
	return func(o *Options) {
		o.Threshold = t
	}
}

func WithContextBudget(budget int) Option {
	return func(o *Options) {
		o.ContextBudget = budget
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:          vectorstore.DefaultTopK,
		Threshold:     DefaultThreshold,
		ContextBudget: DefaultContextBudget,
		Context:       context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
