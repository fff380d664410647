package mock

import (
	"context"
	"fmt"

	"github.com/sagealpha/backend/generator"
)

type mockGenerator struct {
	options generator.Options
}

// Complete echoes the last message deterministically, clearly marked as mock.
func (g *mockGenerator) Complete(ctx context.Context, messages []generator.Message) (string, error) {
	last := ""
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}

	return fmt.Sprintf("[MOCK RESPONSE] You asked: \"%s\". SageAlpha backend is running! Real LLM not configured.", last), nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	return &mockGenerator{
		options: options,
	}
}
