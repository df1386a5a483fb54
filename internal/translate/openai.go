package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kakasub/kaka/internal/subtitle"
)

// OpenAITranslator implements Translator with the Chat Completions API.
type OpenAITranslator struct {
	client openai.Client
	model  string
	opts   Options
}

func NewOpenAITranslator(apiKey string, opts Options) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAITranslator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		opts:   opts,
	}, nil
}

func (t *OpenAITranslator) Translate(
	ctx context.Context,
	doc *subtitle.Document,
) (*subtitle.Document, error) {
	return translateDocument(ctx, t, doc, t.opts.batchSize())
}

func (t *OpenAITranslator) translateBatch(
	ctx context.Context,
	items []indexedText,
) ([]indexedText, error) {
	prompt := buildPrompt(t.opts, items)

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}
	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}

	return parseBatchResponse(responseText, len(items))
}
