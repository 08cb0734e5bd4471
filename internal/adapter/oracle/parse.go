package oracle

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"monu/internal/domain"
)

// extractJSON returns the span from the first '{' to the last '}', which
// drops chatter and code fences models put around the object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return ""
}

// ParseCorrection reads a correction object out of raw model output.
// user_input and corrected_text must be present and be strings (empty is
// fine); explanation is optional.
func ParseCorrection(raw string) (domain.Correction, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return domain.Correction{}, fmt.Errorf("%w: no JSON object in model output: %s", domain.ErrOracleMalformedOutput, preview(raw))
	}
	if !gjson.Valid(payload) {
		return domain.Correction{}, fmt.Errorf("%w: invalid JSON in model output: %s", domain.ErrOracleMalformedOutput, preview(payload))
	}

	obj := gjson.Parse(payload)
	if !obj.IsObject() {
		return domain.Correction{}, fmt.Errorf("%w: model output is not an object", domain.ErrOracleMalformedOutput)
	}

	userInput, err := requiredString(obj, "user_input")
	if err != nil {
		return domain.Correction{}, err
	}
	corrected, err := requiredString(obj, "corrected_text")
	if err != nil {
		return domain.Correction{}, err
	}

	return domain.Correction{
		UserInput:     userInput,
		CorrectedText: corrected,
		Explanation:   explanationOf(obj.Get("explanation")),
	}, nil
}

func requiredString(obj gjson.Result, field string) (string, error) {
	v := obj.Get(field)
	if !v.Exists() {
		return "", fmt.Errorf("%w: missing field %q", domain.ErrOracleMalformedOutput, field)
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%w: field %q is %s, not a string", domain.ErrOracleMalformedOutput, field, v.Type)
	}
	return v.Str, nil
}

// Some models answer with a list of explanations.
func explanationOf(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	if v.IsArray() {
		var parts []string
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return v.String()
}

const previewBytes = 200

// preview shortens s for error messages without splitting a rune.
func preview(s string) string {
	if len(s) <= previewBytes {
		return s
	}
	cut := previewBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
