package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ToSRT emits the document as canonical SRT: 1-based sequence numbers,
// comma decimal separator in timestamps, a blank line between entries and
// trimmed text. Translations are not included; see ToTranslatedSRT.
func (d *Document) ToSRT() string {
	return d.emitSRT(false)
}

// ToTranslatedSRT emits SRT using each segment's translation, falling back
// to the original text where no translation exists.
func (d *Document) ToTranslatedSRT() string {
	return d.emitSRT(true)
}

func (d *Document) emitSRT(translated bool) string {
	var sb strings.Builder
	for i, seg := range d.Segments {
		text := seg.Text
		if translated && seg.Translation != "" {
			text = seg.Translation
		}

		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(seg.Start),
			formatSRTTime(seg.End)))
		sb.WriteString(strings.TrimSpace(text))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteSRT writes the SRT rendering to path as UTF-8, creating parent
// directories as needed.
func (d *Document) WriteSRT(path string, translated bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, []byte(d.emitSRT(translated)), 0644)
}

func formatSRTTime(d time.Duration) string {
	ms := d.Milliseconds()

	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
