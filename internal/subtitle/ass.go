package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Inline override blocks like {\pos(10,20)}. Styling is out of scope, only
// timing and text survive the parse.
var assOverrideTagRegex = regexp.MustCompile(`\{[^}]*\}`)

func parseASS(r io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(r)

	var segments []Segment
	var formatColumns []string
	startIdx, endIdx, textIdx := -1, -1, -1
	inEvents := false
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(strings.Trim(trimmed, "[]"))
			inEvents = section == "events"
			continue
		}

		if !inEvents {
			continue
		}

		if strings.HasPrefix(trimmed, "Format:") {
			formatColumns = splitCSVFields(
				strings.TrimPrefix(trimmed, "Format:"),
			)
			for i, col := range formatColumns {
				switch strings.ToLower(col) {
				case "start":
					startIdx = i
				case "end":
					endIdx = i
				case "text":
					textIdx = i
				}
			}
			if textIdx == -1 || startIdx == -1 || endIdx == -1 {
				return nil, fmt.Errorf(
					"ASS Format line at line %d is missing Start, End or Text",
					lineNum,
				)
			}
			continue
		}

		if !strings.HasPrefix(trimmed, "Dialogue:") {
			continue
		}
		if len(formatColumns) == 0 {
			return nil, fmt.Errorf(
				"ASS Dialogue at line %d before any Format line", lineNum,
			)
		}

		content := strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:"))
		fields := splitDialogueFields(content, len(formatColumns))
		if len(fields) < len(formatColumns) {
			return nil, fmt.Errorf(
				"ASS Dialogue at line %d has %d fields, expected %d",
				lineNum,
				len(fields),
				len(formatColumns),
			)
		}

		start, err := parseASSTimestamp(fields[startIdx])
		if err != nil {
			return nil, fmt.Errorf(
				"invalid start timestamp at line %d: %w", lineNum, err,
			)
		}
		end, err := parseASSTimestamp(fields[endIdx])
		if err != nil {
			return nil, fmt.Errorf(
				"invalid end timestamp at line %d: %w", lineNum, err,
			)
		}

		text := assOverrideTagRegex.ReplaceAllString(fields[textIdx], "")
		text = strings.ReplaceAll(text, `\N`, "\n")
		text = strings.ReplaceAll(text, `\n`, "\n")

		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  text,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASS input: %w", err)
	}

	if len(formatColumns) == 0 {
		return nil, fmt.Errorf("ASS input missing [Events] Format line")
	}

	return New(segments), nil
}

func splitCSVFields(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// splitDialogueFields splits on commas up to the field count; the Text
// field is last and may itself contain commas.
func splitDialogueFields(content string, numFields int) []string {
	parts := make([]string, 0, numFields)
	remaining := content

	for i := 0; i < numFields-1; i++ {
		idx := strings.Index(remaining, ",")
		if idx == -1 {
			parts = append(parts, remaining)
			remaining = ""
			break
		}
		parts = append(parts, remaining[:idx])
		remaining = remaining[idx+1:]
	}
	parts = append(parts, remaining)

	return parts
}

// H:MM:SS.cc with centisecond precision
func parseASSTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed ASS timestamp %q", ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed ASS timestamp %q", ts)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed ASS timestamp %q", ts)
	}

	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		return 0, fmt.Errorf("malformed ASS timestamp %q", ts)
	}
	seconds, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed ASS timestamp %q", ts)
	}
	centis, err := strconv.Atoi(secParts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed ASS timestamp %q", ts)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centis)*10*time.Millisecond, nil
}
