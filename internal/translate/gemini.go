package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kakasub/kaka/internal/subtitle"
)

// GeminiTranslator implements Translator with the Gemini API.
type GeminiTranslator struct {
	client *genai.Client
	model  string
	opts   Options
}

func NewGeminiTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranslator{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

func (t *GeminiTranslator) Translate(
	ctx context.Context,
	doc *subtitle.Document,
) (*subtitle.Document, error) {
	return translateDocument(ctx, t, doc, t.opts.batchSize())
}

func (t *GeminiTranslator) translateBatch(
	ctx context.Context,
	items []indexedText,
) ([]indexedText, error) {
	prompt := buildPrompt(t.opts, items)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return parseBatchResponse(responseText, len(items))
}
