package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kakasub/kaka/internal/media"
	"github.com/kakasub/kaka/internal/subtitle"
)

// OpenAIRecognizer implements Recognizer with the OpenAI Audio API.
type OpenAIRecognizer struct {
	client openai.Client
	model  string
	opts   Options
}

// segment of the Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAIRecognizer(apiKey string, opts Options) (*OpenAIRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAIRecognizer{
		client: openai.NewClient(clientOpts...),
		model:  model,
		opts:   opts,
	}, nil
}

// Recognize transcribes the audio file and returns the segments as a
// document, ordered and indexed as the engine emitted them.
func (r *OpenAIRecognizer) Recognize(
	ctx context.Context,
	audioPath string,
) (*subtitle.Document, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(r.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if r.opts.Language != "" {
		params.Language = openai.String(r.opts.Language)
	}
	if r.opts.Prompt != "" {
		params.Prompt = openai.String(r.opts.Prompt)
	}

	resp, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	doc, err := parseVerboseJSON(resp.RawJSON())
	if err != nil {
		// engines without segment timing still return full text; keep it
		// as a single segment spanning the file
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil, fmt.Errorf("no usable transcription in response: %w", err)
		}
		duration := probeFallbackDuration(audioPath)
		return subtitle.New([]subtitle.Segment{{
			Start: 0,
			End:   duration,
			Text:  text,
		}}), nil
	}

	return doc, nil
}

func parseVerboseJSON(rawJSON string) (*subtitle.Document, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if len(resp.Segments) == 0 {
		return nil, fmt.Errorf("no segments in response")
	}

	segments := make([]subtitle.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		segments = append(segments, subtitle.Segment{
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  seg.Text,
		})
	}

	return subtitle.New(segments), nil
}

// Only used when the engine gave no timing at all.
func probeFallbackDuration(audioPath string) time.Duration {
	if d, err := media.Duration(audioPath); err == nil && d > 0 {
		return d
	}
	return time.Second
}
