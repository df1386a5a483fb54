package subtitle

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleDocument() *Document {
	return New([]Segment{
		{Start: 0, End: 4 * time.Second, Text: "hello world"},
		{Start: 5 * time.Second, End: 8 * time.Second, Text: "second segment"},
		{Start: 10 * time.Second, End: 15 * time.Second, Text: "the end"},
	})
}

func TestSRTRoundTrip(t *testing.T) {
	doc := New([]Segment{
		{Start: 0, End: 4 * time.Second, Text: "Hello, world!"},
		{
			Start: 5500 * time.Millisecond,
			End:   8200 * time.Millisecond,
			Text:  "Two lines\nof text.",
		},
		{
			Start: 3661 * time.Second,
			End:   3665 * time.Second,
			Text:  "Past the hour mark.",
		},
	})

	parsed, err := Parse(strings.NewReader(doc.ToSRT()), FormatSRT)
	if err != nil {
		t.Fatalf("failed to re-parse emitted SRT: %v", err)
	}

	if parsed.Count() != doc.Count() {
		t.Fatalf("round trip changed count: %d != %d", parsed.Count(), doc.Count())
	}
	for i := range doc.Segments {
		want, got := doc.Segments[i], parsed.Segments[i]
		if got.Start != want.Start || got.End != want.End || got.Text != want.Text {
			t.Errorf("segment %d: got (%v, %v, %q), want (%v, %v, %q)",
				i, got.Start, got.End, got.Text, want.Start, want.End, want.Text)
		}
	}
}

func TestToSRTFormat(t *testing.T) {
	doc := New([]Segment{
		{Start: 1500 * time.Millisecond, End: 3 * time.Second, Text: "  padded  "},
	})

	want := "1\n00:00:01,500 --> 00:00:03,000\npadded\n\n"
	if got := doc.ToSRT(); got != want {
		t.Errorf("ToSRT() = %q, want %q", got, want)
	}
}

func TestToTranslatedSRT(t *testing.T) {
	doc := sampleDocument()
	if err := doc.ApplyTranslations([]string{"uno", "dos", "tres"}); err != nil {
		t.Fatalf("ApplyTranslations failed: %v", err)
	}

	out := doc.ToTranslatedSRT()
	for _, word := range []string{"uno", "dos", "tres"} {
		if !strings.Contains(out, word) {
			t.Errorf("translated SRT missing %q:\n%s", word, out)
		}
	}
	if strings.Contains(out, "hello world") {
		t.Errorf("translated SRT still contains original text:\n%s", out)
	}

	// plain export drops translations
	if strings.Contains(doc.ToSRT(), "uno") {
		t.Error("ToSRT() leaked translated text")
	}
}

func TestStats(t *testing.T) {
	doc := New([]Segment{
		{Start: 0, End: 4 * time.Second, Text: "abcde"},
		{Start: 5 * time.Second, End: 8 * time.Second, Text: " fghij "},
		{Start: 10 * time.Second, End: 15 * time.Second, Text: "klmno"},
	})

	stats := doc.Stats()
	if stats.Segments != 3 {
		t.Errorf("expected 3 segments, got %d", stats.Segments)
	}
	if stats.SpokenDuration != 12*time.Second {
		t.Errorf("expected 12s spoken, got %v", stats.SpokenDuration)
	}
	if stats.Characters != 15 {
		t.Errorf("expected 15 characters, got %d", stats.Characters)
	}
	if FormatDuration(stats.SpokenDuration) != "12s" {
		t.Errorf("expected duration display \"12s\", got %q",
			FormatDuration(stats.SpokenDuration))
	}
}

func TestRowsProjection(t *testing.T) {
	doc := New([]Segment{
		{Start: 1500 * time.Millisecond, End: 3250 * time.Millisecond, Text: "first"},
	})

	rows := doc.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Start != "00:01.500" || row.End != "00:03.250" {
		t.Errorf("formatted times = %q, %q", row.Start, row.End)
	}
	if row.Duration != 1.8 {
		t.Errorf("duration = %v, want 1.8", row.Duration)
	}
	if row.Index != 0 || row.Original != "first" || row.Translation != "" {
		t.Errorf("unexpected row: %+v", row)
	}
}

func TestFilter(t *testing.T) {
	doc := sampleDocument()

	if got := doc.Filter(""); len(got) != 3 {
		t.Errorf("empty query: expected all 3 rows, got %d", len(got))
	}
	if got := doc.Filter("zebra"); len(got) != 0 {
		t.Errorf("no-match query: expected 0 rows, got %d", len(got))
	}

	got := doc.Filter("HELLO")
	if len(got) != 1 {
		t.Fatalf("case-insensitive query: expected 1 row, got %d", len(got))
	}
	if got[0].Index != 0 || got[0].Original != "hello world" {
		t.Errorf("unexpected row: %+v", got[0])
	}

	// filtering must not touch the document
	if doc.Count() != 3 {
		t.Errorf("Filter mutated the document: count %d", doc.Count())
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	doc := New([]Segment{
		{Start: 0, End: time.Second, Text: "match one"},
		{Start: time.Second, End: 2 * time.Second, Text: "skip"},
		{Start: 2 * time.Second, End: 3 * time.Second, Text: "match two"},
	})

	rows := doc.Filter("match")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Index != 0 || rows[1].Index != 2 {
		t.Errorf("order not preserved: indices %d, %d", rows[0].Index, rows[1].Index)
	}
}

func TestApplyTranslationsAlignment(t *testing.T) {
	doc := sampleDocument()

	if err := doc.ApplyTranslations([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("aligned ApplyTranslations failed: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if doc.Segments[i].Translation != want {
			t.Errorf("segment %d: translation %q, want %q",
				i, doc.Segments[i].Translation, want)
		}
	}
	if !doc.Translated() {
		t.Error("expected document to report Translated()")
	}

	// one short: fatal, nothing applied
	short := sampleDocument()
	err := short.ApplyTranslations([]string{"a", "b"})
	if !errors.Is(err, ErrTranslationAlignment) {
		t.Fatalf("expected ErrTranslationAlignment, got %v", err)
	}
	for i, seg := range short.Segments {
		if seg.Translation != "" {
			t.Errorf("segment %d: translation applied despite mismatch", i)
		}
	}
}

func TestRowsBeforeTranslation(t *testing.T) {
	rows := sampleDocument().Rows()
	for _, row := range rows {
		if row.Translation != "" {
			t.Errorf("row %d: expected empty translation, got %q",
				row.Index, row.Translation)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc := sampleDocument()
	clone := doc.Clone()

	if err := clone.ApplyTranslations([]string{"x", "y", "z"}); err != nil {
		t.Fatalf("ApplyTranslations on clone failed: %v", err)
	}
	for i, seg := range doc.Segments {
		if seg.Translation != "" {
			t.Errorf("segment %d of original mutated through clone", i)
		}
	}
}

func TestNewDropsEmptySegments(t *testing.T) {
	doc := New([]Segment{
		{Start: 0, End: time.Second, Text: "   "},
		{Start: time.Second, End: 2 * time.Second, Text: " kept "},
	})
	if doc.Count() != 1 {
		t.Fatalf("expected 1 segment, got %d", doc.Count())
	}
	if doc.Segments[0].Text != "kept" {
		t.Errorf("expected trimmed %q, got %q", "kept", doc.Segments[0].Text)
	}
}

func TestValidate(t *testing.T) {
	good := sampleDocument()
	if err := good.Validate(); err != nil {
		t.Errorf("valid document failed validation: %v", err)
	}

	bad := &Document{Segments: []Segment{
		{Start: 2 * time.Second, End: time.Second, Text: "backwards"},
	}}
	if err := bad.Validate(); err == nil {
		t.Error("expected validation error for end <= start")
	}
}
