package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sagealpha/backend/embedder"
	"github.com/sashabaranov/go-openai"
)

const defaultEmbeddingModel = "text-embedding-3-small"

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(embeddingModel(e.options.Model)),
	})
	if err != nil {
		return nil, err
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return rsp.Data[0].Embedding, nil
}

// embeddingModel guards against a chat deployment being configured where an
// embedding model is required.
func embeddingModel(model string) string {
	if model == "" || strings.Contains(model, "gpt") || strings.Contains(model, "chat") {
		return defaultEmbeddingModel
	}
	return model
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	e := &openAIEmbedder{
		options: options,
	}

	if len(options.BaseURL) > 0 {
		cfg := openai.DefaultAzureConfig(options.ApiKey, options.BaseURL)
		e.client = openai.NewClientWithConfig(cfg)
	} else {
		e.client = openai.NewClient(options.ApiKey)
	}

	return e
}
