package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// cleanJSONResponse strips markdown code fences the models like to add
// despite the prompt.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// extractIndexedTexts parses a model response as a JSON array of
// {index, text} objects.
func extractIndexedTexts(text string) ([]indexedText, error) {
	var results []indexedText
	if err := json.Unmarshal([]byte(text), &results); err != nil {
		// some models wrap the array in an object
		var wrapped map[string]json.RawMessage
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 == nil {
			for _, raw := range wrapped {
				var inner []indexedText
				if err3 := json.Unmarshal(raw, &inner); err3 == nil {
					return inner, nil
				}
			}
		}
		return nil, fmt.Errorf("response is not an indexed JSON array: %w", err)
	}
	return results, nil
}

// parseBatchResponse runs the shared cleanup + extraction over a provider's
// raw text output.
func parseBatchResponse(responseText string, expectedCount int) ([]indexedText, error) {
	responseText = cleanJSONResponse(responseText)

	results, err := extractIndexedTexts(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	if len(results) != expectedCount {
		return nil, fmt.Errorf(
			"expected %d results, got %d",
			expectedCount,
			len(results),
		)
	}

	return results, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
