package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrNoProvider is returned when classification needs a model call but
// no provider key is configured. It is a configuration error and is
// never retried.
var ErrNoProvider = errors.New("analyzer: no model provider configured")

// Provider turns a prompt into raw model text.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// chatProvider adapts an eino chat model to the Provider interface.
type chatProvider struct {
	name  string
	model model.BaseChatModel
}

func (p *chatProvider) Name() string { return p.name }

func (p *chatProvider) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := p.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", p.name, err)
	}
	return msg.Content, nil
}

// NewDeepSeekProvider builds the DeepSeek-backed provider.
func NewDeepSeekProvider(ctx context.Context, apiKey, modelName string) (Provider, error) {
	cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, fmt.Errorf("create deepseek model: %w", err)
	}
	return &chatProvider{name: "deepseek", model: cm}, nil
}

// NewOpenAIProvider builds the OpenAI-compatible provider. BaseURL may
// point at any compatible endpoint.
func NewOpenAIProvider(ctx context.Context, apiKey, baseURL, modelName string) (Provider, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return &chatProvider{name: "openai", model: cm}, nil
}
