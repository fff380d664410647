package embedder

import "context"

// DefaultWidth matches text-embedding-3-small.
const DefaultWidth = 1536

type Option func(*Options)

type Options struct {
	ApiKey  string
	Model   string
	BaseURL string
	Width   int
	Context context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func WithWidth(width int) Option {
	return func(o *Options) {
		o.Width = width
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Width:   DefaultWidth,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
