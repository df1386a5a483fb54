package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kakasub/kaka/internal/subtitle"
)

// Translator fills in the translated text of a document with one blocking
// call. Implementations return a translated copy; the input document is
// never mutated, so a failed call cannot corrupt it. The result must carry
// exactly the input's segment count or the call fails with
// subtitle.ErrTranslationAlignment.
type Translator interface {
	Translate(
		ctx context.Context,
		doc *subtitle.Document,
	) (*subtitle.Document, error)
}

// translation service provider
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

const DefaultBatchSize = 50

// Options configures a translator at construction time.
type Options struct {
	TargetLanguage string
	InputLanguage  string
	Model          string
	Prompt         string
	BatchSize      int // segments per API request
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// Factory creates a Translator for the given provider.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranslator(apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// one indexed text in a translation request or response
type indexedText struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// batchTranslator is the per-provider core: one API request per batch.
type batchTranslator interface {
	translateBatch(ctx context.Context, items []indexedText) ([]indexedText, error)
}

// translateDocument drives a provider over the whole document, batch by
// batch, then merges by positional index.
func translateDocument(
	ctx context.Context,
	bt batchTranslator,
	doc *subtitle.Document,
	batchSize int,
) (*subtitle.Document, error) {
	items := make([]indexedText, len(doc.Segments))
	for i, seg := range doc.Segments {
		items[i] = indexedText{Index: i, Text: seg.Text}
	}

	var results []indexedText
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		batch, err := bt.translateBatch(ctx, items[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/batchSize, err)
		}
		results = append(results, batch...)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	texts, err := alignResults(results, len(items))
	if err != nil {
		return nil, err
	}

	out := doc.Clone()
	if err := out.ApplyTranslations(texts); err != nil {
		return nil, err
	}
	return out, nil
}

// alignResults turns indexed results into a dense 0..N-1 slice. Anything
// missing, duplicated or out of range is an alignment failure; the caller
// never silently truncates or pads.
func alignResults(results []indexedText, count int) ([]string, error) {
	if len(results) != count {
		return nil, fmt.Errorf(
			"%w: expected %d results, got %d",
			subtitle.ErrTranslationAlignment,
			count,
			len(results),
		)
	}

	texts := make([]string, count)
	seen := make([]bool, count)
	for _, res := range results {
		if res.Index < 0 || res.Index >= count {
			return nil, fmt.Errorf(
				"%w: result index %d out of range 0-%d",
				subtitle.ErrTranslationAlignment,
				res.Index,
				count-1,
			)
		}
		if seen[res.Index] {
			return nil, fmt.Errorf(
				"%w: duplicate result index %d",
				subtitle.ErrTranslationAlignment,
				res.Index,
			)
		}
		seen[res.Index] = true
		texts[res.Index] = res.Text
	}
	return texts, nil
}

// buildPrompt creates the indexed-JSON translation prompt shared by all
// LLM providers.
func buildPrompt(opts Options, items []indexedText) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle texts to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle texts to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Translate ONLY the text content, preserving the meaning.\n")
	sb.WriteString("2. Preserve line breaks in the same positions.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("5. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
