package recognize

import (
	"testing"
	"time"
)

func TestFactoryReturnsOpenAIRecognizer(t *testing.T) {
	rec, err := Factory(ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := rec.(*OpenAIRecognizer); !ok {
		t.Errorf("expected *OpenAIRecognizer, got %T", rec)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(Provider("unknown"), "fake-key", Options{})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	_, err := Factory(ProviderOpenAI, "", Options{})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestParseVerboseJSON(t *testing.T) {
	raw := `{
		"text": "Hello there. General Kenobi.",
		"language": "en",
		"duration": 7.5,
		"segments": [
			{"start": 0.0, "end": 3.2, "text": " Hello there. "},
			{"start": 3.4, "end": 7.5, "text": "General Kenobi."}
		]
	}`

	doc, err := parseVerboseJSON(raw)
	if err != nil {
		t.Fatalf("parseVerboseJSON failed: %v", err)
	}

	if doc.Count() != 2 {
		t.Fatalf("expected 2 segments, got %d", doc.Count())
	}
	if doc.Segments[0].Text != "Hello there." {
		t.Errorf("expected trimmed text, got %q", doc.Segments[0].Text)
	}
	if doc.Segments[0].End != 3200*time.Millisecond {
		t.Errorf("expected end 3.2s, got %v", doc.Segments[0].End)
	}
	if doc.Segments[1].Start != 3400*time.Millisecond {
		t.Errorf("expected start 3.4s, got %v", doc.Segments[1].Start)
	}
}

func TestParseVerboseJSONWithoutSegments(t *testing.T) {
	if _, err := parseVerboseJSON(`{"text": "flat text only"}`); err == nil {
		t.Error("expected error when response carries no segments")
	}
	if _, err := parseVerboseJSON(""); err == nil {
		t.Error("expected error for empty response")
	}
	if _, err := parseVerboseJSON("{not json"); err == nil {
		t.Error("expected error for malformed response")
	}
}
