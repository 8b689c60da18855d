// Package extractor coerces semi-structured LLM responses into the
// structured review payload. Models are asked for bare JSON but routinely
// wrap it in prose or code fences, so extraction degrades through a chain
// of fallbacks before giving up.
package extractor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/revmux/revmux/internal/loggy"
)

var (
	jsonFenceRegex = regexp.MustCompile("(?s)```(?:json|JSON)\\s*(.*?)```")
	anyFenceRegex  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// Extractor extracts structured review data from LLM responses.
type Extractor struct {
	logger *loggy.Logger
}

// New creates a new Extractor.
func New(logger *loggy.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractReviewPayload parses a provider response into a ReviewPayload.
// It tries, in order: the whole content as JSON, a fenced block labeled
// json, any fenced block, and finally the first balanced brace-delimited
// substring in the free text. An error means none of these produced a
// parseable payload; callers degrade to an abstain review, never drop.
func (e *Extractor) ExtractReviewPayload(content string) (*ReviewPayload, error) {
	candidates := e.candidates(content)

	for _, candidate := range candidates {
		var payload ReviewPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err == nil && payload.Verdict != "" {
			e.logger.Debug("extracted review payload", "length", len(candidate), "issues", len(payload.Issues))
			return &payload, nil
		}

		// Retry with trailing-comma cleanup, a common model mistake.
		fixed := applyBasicFixes(candidate)
		if fixed != candidate {
			var payload ReviewPayload
			if err := json.Unmarshal([]byte(fixed), &payload); err == nil && payload.Verdict != "" {
				return &payload, nil
			}
		}
	}

	return nil, fmt.Errorf("no parseable review payload in content (%d bytes)", len(content))
}

// candidates returns possible JSON substrings in fallback order.
func (e *Extractor) candidates(content string) []string {
	var out []string

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		out = append(out, trimmed)
	}

	for _, match := range jsonFenceRegex.FindAllStringSubmatch(content, -1) {
		if len(match) > 1 {
			out = append(out, strings.TrimSpace(match[1]))
		}
	}

	for _, match := range anyFenceRegex.FindAllStringSubmatch(content, -1) {
		if len(match) > 1 {
			candidate := strings.TrimSpace(match[1])
			if strings.HasPrefix(candidate, "{") {
				out = append(out, candidate)
			}
		}
	}

	if braced := firstBalancedObject(content); braced != "" {
		out = append(out, braced)
	}

	return out
}

// firstBalancedObject returns the first balanced brace-delimited substring,
// respecting string literals and escapes.
func firstBalancedObject(content string) string {
	start := strings.Index(content, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		ch := content[i]

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}

	return ""
}

// applyBasicFixes repairs common model JSON mistakes: trailing commas and
// null issue arrays.
func applyBasicFixes(s string) string {
	result := strings.ReplaceAll(s, `"issues":null`, `"issues":[]`)
	result = strings.ReplaceAll(result, `"issues": null`, `"issues": []`)
	result = regexp.MustCompile(`,\s*\}`).ReplaceAllString(result, "}")
	result = regexp.MustCompile(`,\s*\]`).ReplaceAllString(result, "]")
	return result
}

// ParseLineNumber parses a line number that may arrive as a JSON number or
// a string. Anything unparseable is 0 (line unknown).
func ParseLineNumber(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if num, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return num
		}
	}
	return 0
}

// ClampConfidence restricts a confidence value to [0.0, 1.0].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
