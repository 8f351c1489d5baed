// Package jsonutil extracts JSON from model replies that may wrap it in
// markdown code fences or bury it in prose.
package jsonutil

import (
	"fmt"
	"strings"
)

// StripFences removes a ```json ... ``` or ``` ... ``` wrapper and returns
// the inner content, or the input unchanged when there is no fence.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// ExtractObject returns the first JSON object or array embedded in text,
// matching the opening delimiter with the last corresponding closer.
func ExtractObject(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON content found")
	}

	start, closer := objIdx, "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}
	return text[:end+1], nil
}
