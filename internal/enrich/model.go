package enrich

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rotisserie/eris"

	"github.com/octobees/company-discovery/internal/config"
)

// Model completes a single prompt and returns the raw text of the reply.
type Model interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// NewModel builds the configured provider. It returns nil when no provider
// has credentials, which disables enrichment.
func NewModel(cfg config.LLMConfig) Model {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil
		}
		return NewOpenAIModel(cfg.OpenAIKey, cfg.OpenAIModel)
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil
		}
		return NewAnthropicModel(cfg.AnthropicKey, cfg.AnthropicModel)
	}
	switch {
	case cfg.OpenAIKey != "":
		return NewOpenAIModel(cfg.OpenAIKey, cfg.OpenAIModel)
	case cfg.AnthropicKey != "":
		return NewAnthropicModel(cfg.AnthropicKey, cfg.AnthropicModel)
	}
	return nil
}

// OpenAIModel calls the chat completions API.
type OpenAIModel struct {
	client openai.Client
	model  string
}

// NewOpenAIModel creates an OpenAI-backed model.
func NewOpenAIModel(apiKey, model string, opts ...option.RequestOption) *OpenAIModel {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIModel{client: openai.NewClient(opts...), model: model}
}

func (m *OpenAIModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(m.model),
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return "", eris.Wrap(err, "openai: chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicModel calls the messages API.
type AnthropicModel struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewAnthropicModel creates an Anthropic-backed model.
func NewAnthropicModel(apiKey, model string, opts ...anthropicoption.RequestOption) *AnthropicModel {
	opts = append([]anthropicoption.RequestOption{anthropicoption.WithAPIKey(apiKey)}, opts...)
	return &AnthropicModel{client: sdk.NewClient(opts...), model: model, maxTokens: 1024}
}

func (m *AnthropicModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := m.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(m.model),
		MaxTokens: m.maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
		Temperature: sdk.Float(0.1),
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", eris.New("anthropic: empty response")
	}
	return sb.String(), nil
}
