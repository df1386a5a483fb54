package translate

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kakasub/kaka/internal/subtitle"
)

// AnthropicTranslator implements Translator with the Messages API.
type AnthropicTranslator struct {
	client anthropic.Client
	model  anthropic.Model
	opts   Options
}

func NewAnthropicTranslator(
	apiKey string,
	opts Options,
) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicTranslator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		opts:   opts,
	}, nil
}

func (t *AnthropicTranslator) Translate(
	ctx context.Context,
	doc *subtitle.Document,
) (*subtitle.Document, error) {
	return translateDocument(ctx, t, doc, t.opts.batchSize())
}

func (t *AnthropicTranslator) translateBatch(
	ctx context.Context,
	items []indexedText,
) ([]indexedText, error) {
	prompt := buildPrompt(t.opts, items)

	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	return parseBatchResponse(responseText, len(items))
}
