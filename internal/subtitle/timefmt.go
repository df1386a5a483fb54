package subtitle

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a position as HH:MM:SS.mmm when the hour field is
// non-zero, MM:SS.mmm otherwise. Components are truncated, not rounded.
func FormatTimestamp(d time.Duration) string {
	ms := d.Milliseconds()

	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// FormatDuration renders a coarse human-readable duration ("1h 2m 3s"),
// dropping leading zero units. Display only, never parsed back.
func FormatDuration(d time.Duration) string {
	totalSeconds := d.Milliseconds() / 1000

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
