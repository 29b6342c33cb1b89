package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError describes a failure to extract structured output from a model
// response. Parsing returns it as an explicit result; callers branch on it
// instead of recovering from a decode panic.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("structured output parse failed: %s", e.Reason)
}

// ExtractStructured pulls the first balanced JSON object out of a model
// response. Models often wrap JSON in prose or markdown fences; the scan
// tolerates both.
func ExtractStructured(raw string) (map[string]interface{}, *ParseError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseError{Reason: "empty response", Raw: raw}
	}

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return nil, &ParseError{Reason: "no JSON object found", Raw: raw}
	}

	// Balanced-brace scan, string-literal aware
	depth := 0
	inString := false
	escaped := false
	end := -1
scan:
	for i := start; i < len(trimmed); i++ {
		c := trimmed[i]
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
				end = i
				break scan
			}
		}
	}
	if end < 0 {
		return nil, &ParseError{Reason: "unbalanced JSON object", Raw: raw}
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &result); err != nil {
		return nil, &ParseError{Reason: err.Error(), Raw: raw}
	}

	return result, nil
}

// decodeFindings converts a parsed structured response into typed
// recommendations, issues, and teaching points.
func decodeFindings(kind AgentKind, parsed map[string]interface{}) ([]Recommendation, []Issue, []string) {
	var recs []Recommendation
	var issues []Issue
	var teaching []string

	for _, item := range asSlice(parsed["recommendations"]) {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		text := asString(m["text"])
		if text == "" {
			continue
		}
		recs = append(recs, Recommendation{
			Agent:        kind,
			Kind:         defaultString(asString(m["kind"]), string(kind)),
			Severity:     normalizeSeverity(asString(m["severity"])),
			Text:         text,
			Suggestion:   asString(m["suggestion"]),
			TeachingNote: asString(m["teaching_note"]),
		})
	}

	for _, item := range asSlice(parsed["issues"]) {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		desc := asString(m["description"])
		if desc == "" {
			continue
		}
		issues = append(issues, Issue{
			Agent:       kind,
			Kind:        defaultString(asString(m["kind"]), string(kind)),
			Severity:    normalizeSeverity(asString(m["severity"])),
			Description: desc,
			Location:    asString(m["location"]),
			Suggestion:  asString(m["suggestion"]),
		})
	}

	for _, item := range asSlice(parsed["teaching_points"]) {
		if s := asString(item); s != "" {
			teaching = append(teaching, s)
		}
	}

	return recs, issues, teaching
}

// fallbackFindings wraps a raw non-JSON response as one generic
// medium-severity recommendation so the pipeline never loses agent output.
func fallbackFindings(kind AgentKind, raw string) []Recommendation {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	return []Recommendation{{
		Agent:    kind,
		Kind:     string(kind),
		Severity: SeverityMedium,
		Text:     text,
	}}
}

func normalizeSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	case SeverityPositive:
		return SeverityPositive
	default:
		return SeverityMedium
	}
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
