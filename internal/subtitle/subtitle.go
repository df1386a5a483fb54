package subtitle

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// returned when an input file is not SRT, ASS or VTT
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")

	// returned when a translation batch does not line up 1:1 with the document
	ErrTranslationAlignment = errors.New("translation segment count mismatch")
)

// Segment is one time-coded unit of subtitle text. Its identity is the
// positional index inside the owning Document, assigned at parse or
// recognition time; there is no persistent ID.
type Segment struct {
	Start       time.Duration
	End         time.Duration
	Text        string
	Translation string
}

// Duration is the spoken time covered by the segment.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// Document is an ordered collection of segments, sorted by start time as
// produced by the recognizer or parser. Overlapping segments are tolerated
// and passed through untouched.
type Document struct {
	Segments []Segment
}

// New builds a document from recognizer segments, trimming text and
// dropping empty entries in file order.
func New(segments []Segment) *Document {
	doc := &Document{Segments: make([]Segment, 0, len(segments))}
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		doc.Segments = append(doc.Segments, Segment{
			Start:       seg.Start,
			End:         seg.End,
			Text:        text,
			Translation: strings.TrimSpace(seg.Translation),
		})
	}
	return doc
}

func (d *Document) Count() int {
	return len(d.Segments)
}

// SpokenDuration is the sum of per-segment durations, not the span of the
// media file.
func (d *Document) SpokenDuration() time.Duration {
	var total time.Duration
	for _, seg := range d.Segments {
		total += seg.Duration()
	}
	return total
}

// CharCount counts runes of trimmed original text across all segments.
func (d *Document) CharCount() int {
	total := 0
	for _, seg := range d.Segments {
		total += utf8.RuneCountInString(strings.TrimSpace(seg.Text))
	}
	return total
}

// Stats is the recomputed-on-demand statistics projection shown after
// recognition.
type Stats struct {
	Segments       int
	SpokenDuration time.Duration
	Characters     int
}

func (d *Document) Stats() Stats {
	return Stats{
		Segments:       d.Count(),
		SpokenDuration: d.SpokenDuration(),
		Characters:     d.CharCount(),
	}
}

// Row is one line of the tabular preview. Index is 0-based and matches the
// segment's position in the document; display layers add 1.
type Row struct {
	Index       int     `json:"index"`
	Start       string  `json:"start_time"`
	End         string  `json:"end_time"`
	Duration    float64 `json:"duration"` // seconds, one decimal
	Original    string  `json:"original_subtitle"`
	Translation string  `json:"translated_subtitle"`
}

// Rows projects the document into preview rows. Translation is the empty
// string until a translator has run.
func (d *Document) Rows() []Row {
	rows := make([]Row, len(d.Segments))
	for i, seg := range d.Segments {
		rows[i] = Row{
			Index:       i,
			Start:       FormatTimestamp(seg.Start),
			End:         FormatTimestamp(seg.End),
			Duration:    math.Round(seg.Duration().Seconds()*10) / 10,
			Original:    seg.Text,
			Translation: seg.Translation,
		}
	}
	return rows
}

// Filter returns the rows whose original text contains query,
// case-insensitively, preserving document order. An empty query returns
// every row. The document is never mutated.
func (d *Document) Filter(query string) []Row {
	rows := d.Rows()
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}

	needle := strings.ToLower(query)
	filtered := rows[:0:0]
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Original), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// ApplyTranslations merges translated texts into the document by positional
// index. A count mismatch is fatal: nothing is applied and
// ErrTranslationAlignment is returned, never a silent truncate or pad.
func (d *Document) ApplyTranslations(texts []string) error {
	if len(texts) != len(d.Segments) {
		return fmt.Errorf(
			"%w: document has %d segments, got %d translations",
			ErrTranslationAlignment,
			len(d.Segments),
			len(texts),
		)
	}
	for i, text := range texts {
		d.Segments[i].Translation = strings.TrimSpace(text)
	}
	return nil
}

// Translated reports whether every segment carries a translation.
func (d *Document) Translated() bool {
	if len(d.Segments) == 0 {
		return false
	}
	for _, seg := range d.Segments {
		if seg.Translation == "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, so a failed translation can never corrupt the
// document it started from.
func (d *Document) Clone() *Document {
	segments := make([]Segment, len(d.Segments))
	copy(segments, d.Segments)
	return &Document{Segments: segments}
}

// Validate reports the first violated timing invariant. Overlap between
// neighbours is deliberately not checked: the recognizer's segmentation is
// passed through as-is.
func (d *Document) Validate() error {
	for i, seg := range d.Segments {
		if seg.Start < 0 {
			return fmt.Errorf("segment %d: negative start time %v", i, seg.Start)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf(
				"segment %d: end %v not after start %v",
				i,
				seg.End,
				seg.Start,
			)
		}
	}
	return nil
}
