package openai

import (
	"context"
	"errors"

	"github.com/sagealpha/backend/generator"
	"github.com/sashabaranov/go-openai"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Complete(ctx context.Context, messages []generator.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.options.Model,
		Temperature: g.options.Temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}

	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return rsp.Choices[0].Message.Content, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	if len(options.BaseURL) > 0 {
		cfg := openai.DefaultAzureConfig(options.ApiKey, options.BaseURL)
		g.client = openai.NewClientWithConfig(cfg)
	} else {
		g.client = openai.NewClient(options.ApiKey)
	}

	return g
}
