package recognize

import (
	"context"
	"fmt"

	"github.com/kakasub/kaka/internal/subtitle"
)

// Recognizer turns an audio file into a time-coded subtitle document with
// one blocking call.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (*subtitle.Document, error)
}

// speech recognition provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
)

// Options configures a recognizer at construction time.
type Options struct {
	Model    string // engine model, default whisper-1
	Language string // source language hint, empty for auto-detect
	BaseURL  string // API endpoint override, empty for the provider default
	Prompt   string // optional engine prompt
}

// Factory creates a recognizer for the given provider.
func Factory(provider Provider, apiKey string, opts Options) (Recognizer, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIRecognizer(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported recognition provider: %s", provider)
	}
}
