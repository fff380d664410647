package email

import "context"

type Option func(*Options)

type Options struct {
	ApiKey   string
	From     string
	FromName string
	Context  context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithFrom(from string) Option {
	return func(o *Options) {
		o.From = from
	}
}

func WithFromName(name string) Option {
	return func(o *Options) {
		o.FromName = name
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		From:     "noreply@sagealpha.ai",
		FromName: "SageAlpha Research",
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
