package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kakasub/kaka/internal/subtitle"
)

func testDocument(n int) *subtitle.Document {
	segments := make([]subtitle.Segment, n)
	for i := range segments {
		segments[i] = subtitle.Segment{
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i)*time.Second + 800*time.Millisecond,
			Text:  fmt.Sprintf("line %d", i),
		}
	}
	return subtitle.New(segments)
}

// stubBatchTranslator echoes items back with a prefix, optionally dropping
// the tail to simulate a misbehaving model.
type stubBatchTranslator struct {
	drop  int
	calls int
}

func (s *stubBatchTranslator) translateBatch(
	_ context.Context,
	items []indexedText,
) ([]indexedText, error) {
	s.calls++
	out := make([]indexedText, 0, len(items))
	for _, item := range items {
		out = append(out, indexedText{
			Index: item.Index,
			Text:  "xlated " + item.Text,
		})
	}
	if s.drop > 0 && len(out) >= s.drop {
		out = out[:len(out)-s.drop]
		s.drop = 0
	}
	return out, nil
}

func TestTranslateDocumentAligned(t *testing.T) {
	doc := testDocument(5)
	out, err := translateDocument(context.Background(), &stubBatchTranslator{}, doc, 50)
	if err != nil {
		t.Fatalf("translateDocument failed: %v", err)
	}

	if out.Count() != doc.Count() {
		t.Fatalf("segment count changed: %d != %d", out.Count(), doc.Count())
	}
	for i, seg := range out.Segments {
		want := "xlated " + doc.Segments[i].Text
		if seg.Translation != want {
			t.Errorf("segment %d: translation %q, want %q", i, seg.Translation, want)
		}
		if seg.Text != doc.Segments[i].Text {
			t.Errorf("segment %d: original text changed to %q", i, seg.Text)
		}
	}

	// input document must be untouched
	for i, seg := range doc.Segments {
		if seg.Translation != "" {
			t.Errorf("input segment %d mutated", i)
		}
	}
}

func TestTranslateDocumentBatches(t *testing.T) {
	doc := testDocument(7)
	stub := &stubBatchTranslator{}
	out, err := translateDocument(context.Background(), stub, doc, 3)
	if err != nil {
		t.Fatalf("translateDocument failed: %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("expected 3 batches for 7 items at size 3, got %d", stub.calls)
	}
	if out.Segments[6].Translation != "xlated line 6" {
		t.Errorf("last segment translation: %q", out.Segments[6].Translation)
	}
}

func TestTranslateDocumentCountMismatch(t *testing.T) {
	doc := testDocument(4)
	_, err := translateDocument(
		context.Background(),
		&stubBatchTranslator{drop: 1},
		doc,
		50,
	)
	if !errors.Is(err, subtitle.ErrTranslationAlignment) {
		t.Fatalf("expected ErrTranslationAlignment, got %v", err)
	}
}

func TestAlignResultsRejectsDuplicates(t *testing.T) {
	_, err := alignResults([]indexedText{
		{Index: 0, Text: "a"},
		{Index: 0, Text: "b"},
	}, 2)
	if !errors.Is(err, subtitle.ErrTranslationAlignment) {
		t.Errorf("expected ErrTranslationAlignment for duplicates, got %v", err)
	}
}

func TestAlignResultsRejectsOutOfRange(t *testing.T) {
	_, err := alignResults([]indexedText{
		{Index: 0, Text: "a"},
		{Index: 5, Text: "b"},
	}, 2)
	if !errors.Is(err, subtitle.ErrTranslationAlignment) {
		t.Errorf("expected ErrTranslationAlignment for range, got %v", err)
	}
}

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	_, err := Factory(context.Background(), ProviderOpenAI, "fake-key", Options{})
	if err == nil {
		t.Error("expected error for missing target language")
	}
}

func TestFactoryReturnsOpenAITranslator(t *testing.T) {
	tr, err := Factory(
		context.Background(),
		ProviderOpenAI,
		"fake-key",
		Options{TargetLanguage: "Spanish"},
	)
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := tr.(*OpenAITranslator); !ok {
		t.Errorf("expected *OpenAITranslator, got %T", tr)
	}
}

func TestFactoryReturnsAnthropicTranslator(t *testing.T) {
	tr, err := Factory(
		context.Background(),
		ProviderAnthropic,
		"fake-key",
		Options{TargetLanguage: "Japanese"},
	)
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := tr.(*AnthropicTranslator); !ok {
		t.Errorf("expected *AnthropicTranslator, got %T", tr)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(
		context.Background(),
		Provider("unknown"),
		"fake-key",
		Options{TargetLanguage: "French"},
	)
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`[{"index":0,"text":"hi"}]`, `[{"index":0,"text":"hi"}]`},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  [1]  ", "[1]"},
	}
	for _, tt := range tests {
		if got := cleanJSONResponse(tt.in); got != tt.want {
			t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBatchResponse(t *testing.T) {
	raw := "```json\n[{\"index\":0,\"text\":\"hola\"},{\"index\":1,\"text\":\"adios\"}]\n```"
	results, err := parseBatchResponse(raw, 2)
	if err != nil {
		t.Fatalf("parseBatchResponse failed: %v", err)
	}
	if len(results) != 2 || results[1].Text != "adios" {
		t.Errorf("unexpected results: %+v", results)
	}

	if _, err := parseBatchResponse(raw, 3); err == nil {
		t.Error("expected error for count mismatch")
	}
	if _, err := parseBatchResponse("not json", 1); err == nil {
		t.Error("expected error for malformed response")
	}
}

func TestBuildPromptContainsItems(t *testing.T) {
	opts := Options{TargetLanguage: "German", InputLanguage: "English"}
	prompt := buildPrompt(opts, []indexedText{{Index: 0, Text: "good morning"}})

	for _, want := range []string{"German", "English", "good morning", "\"index\""} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
