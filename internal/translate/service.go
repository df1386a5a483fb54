package translate

import (
	"context"
	"fmt"

	"github.com/kakasub/kaka/internal/subtitle"
)

// Service builds a provider translator per request, so each call can carry
// its own target language while the provider, credentials and tuning stay
// fixed for the process lifetime.
type Service struct {
	provider Provider
	apiKey   string
	opts     Options
}

func NewService(provider Provider, apiKey string, opts Options) *Service {
	return &Service{
		provider: provider,
		apiKey:   apiKey,
		opts:     opts,
	}
}

func (s *Service) Translate(
	ctx context.Context,
	doc *subtitle.Document,
	targetLanguage string,
) (*subtitle.Document, error) {
	if targetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	opts := s.opts
	opts.TargetLanguage = targetLanguage

	translator, err := Factory(ctx, s.provider, s.apiKey, opts)
	if err != nil {
		return nil, err
	}
	return translator.Translate(ctx, doc)
}
