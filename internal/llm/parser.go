package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errNoJSONObject   = errors.New("no JSON object in response")
	errMissingField   = errors.New("required field missing")
	errIndexRange     = errors.New("selectedIndex out of range")
	errScoreRange     = errors.New("matchScore out of range")
	errEmptyReasoning = errors.New("reasoning is empty")
)

// selectionResponse mirrors the JSON the ranking model is asked to produce.
// Pointers distinguish a missing field from a zero value.
type selectionResponse struct {
	SelectedIndex *int     `json:"selectedIndex"`
	Reasoning     *string  `json:"reasoning"`
	MatchScore    *int     `json:"matchScore"`
	Warnings      []string `json:"warnings"`
}

// parsedSelection is a validated response with a zero-based index.
type parsedSelection struct {
	Index      int
	Reasoning  string
	MatchScore int
	Warnings   []string
}

// parseSelection validates raw model output against the number of candidates
// that were offered. Anything that does not fully conform is an error.
func parseSelection(raw string, candidates int) (*parsedSelection, error) {
	body, err := extractJSONObject(stripMarkdownFence(raw))
	if err != nil {
		return nil, err
	}

	var resp selectionResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode selection: %w", err)
	}

	switch {
	case resp.SelectedIndex == nil:
		return nil, fmt.Errorf("%w: selectedIndex", errMissingField)
	case resp.Reasoning == nil:
		return nil, fmt.Errorf("%w: reasoning", errMissingField)
	case resp.MatchScore == nil:
		return nil, fmt.Errorf("%w: matchScore", errMissingField)
	}

	if *resp.SelectedIndex < 1 || *resp.SelectedIndex > candidates {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", errIndexRange, *resp.SelectedIndex, candidates)
	}
	if *resp.MatchScore < 0 || *resp.MatchScore > 100 {
		return nil, fmt.Errorf("%w: %d", errScoreRange, *resp.MatchScore)
	}
	reasoning := strings.TrimSpace(*resp.Reasoning)
	if reasoning == "" {
		return nil, errEmptyReasoning
	}

	warnings := make([]string, 0, len(resp.Warnings))
	for _, w := range resp.Warnings {
		if w = strings.TrimSpace(w); w != "" {
			warnings = append(warnings, w)
		}
	}

	return &parsedSelection{
		Index:      *resp.SelectedIndex - 1,
		Reasoning:  reasoning,
		MatchScore: *resp.MatchScore,
		Warnings:   warnings,
	}, nil
}

// extractJSONObject returns the first balanced {...} block, skipping any
// preamble or trailing commentary. Braces inside string literals are ignored.
func extractJSONObject(s string) (string, error) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errNoJSONObject
}

// stripMarkdownFence removes a ```json / ``` wrapping that some models add.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
