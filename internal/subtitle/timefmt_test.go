package subtitle

import (
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00.000"},
		{1, "00:00.001"},
		{999, "00:00.999"},
		{1000, "00:01.000"},
		{61_500, "01:01.500"},
		{3_599_999, "59:59.999"},
		// hour boundary switches to the long form
		{3_600_000, "01:00:00.000"},
		{3_661_042, "01:01:01.042"},
		{36_000_000, "10:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatTimestamp(time.Duration(tt.ms) * time.Millisecond)
			if got != tt.want {
				t.Errorf("FormatTimestamp(%dms) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestFormatTimestampTruncates(t *testing.T) {
	// 1.9996s must render as 01.999, never round up to 02.000
	got := FormatTimestamp(1999600 * time.Microsecond)
	if got != "00:01.999" {
		t.Errorf("expected truncation to 00:01.999, got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{12_000, "12s"},
		{59_999, "59s"},
		{60_000, "1m 0s"},
		{90_000, "1m 30s"},
		{3_600_000, "1h 0m 0s"},
		{3_723_000, "1h 2m 3s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatDuration(time.Duration(tt.ms) * time.Millisecond)
			if got != tt.want {
				t.Errorf("FormatDuration(%dms) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}
