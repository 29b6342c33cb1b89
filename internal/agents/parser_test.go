package agents

import (
	"strings"
	"testing"
)

func TestExtractStructured_PlainObject(t *testing.T) {
	parsed, perr := ExtractStructured(`{"recommendations": []}`)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	if _, ok := parsed["recommendations"]; !ok {
		t.Error("recommendations key missing")
	}
}

func TestExtractStructured_MarkdownFence(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"issues\": [{\"description\": \"flat pacing\"}]}\n```\nLet me know."
	parsed, perr := ExtractStructured(raw)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	if parsed["issues"] == nil {
		t.Error("issues key missing from fenced JSON")
	}
}

func TestExtractStructured_BracesInsideStrings(t *testing.T) {
	raw := `{"text": "use {curly} braces \" and } carefully", "ok": true}`
	parsed, perr := ExtractStructured(raw)
	if perr != nil {
		t.Fatalf("unexpected parse error: %v", perr)
	}
	if parsed["ok"] != true {
		t.Error("object truncated at brace inside string literal")
	}
}

func TestExtractStructured_Failures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"no object", "The pacing drags in the middle section."},
		{"unbalanced", `{"text": "never closed"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, perr := ExtractStructured(tc.raw)
			if perr == nil {
				t.Fatal("expected parse error")
			}
			if perr.Raw != tc.raw {
				t.Error("parse error should carry the raw response")
			}
		})
	}
}

func TestDecodeFindings(t *testing.T) {
	parsed, perr := ExtractStructured(`{
		"recommendations": [
			{"text": "Vary sentence length.", "severity": "HIGH", "suggestion": "Split the long ones."},
			{"text": "Nice dialogue rhythm.", "severity": "positive", "kind": "praise"},
			{"text": ""}
		],
		"issues": [
			{"description": "POV slips in paragraph 3", "severity": "mystery", "location": "para 3"}
		],
		"teaching_points": ["Filter words distance the reader.", ""]
	}`)
	if perr != nil {
		t.Fatalf("parse: %v", perr)
	}

	recs, issues, teaching := decodeFindings(AgentStyle, parsed)

	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations (empty text dropped), got %d", len(recs))
	}
	if recs[0].Severity != SeverityHigh {
		t.Errorf("severity not case-folded: %s", recs[0].Severity)
	}
	if recs[0].Kind != "style" {
		t.Errorf("missing kind should default to agent kind, got %q", recs[0].Kind)
	}
	if recs[1].Kind != "praise" {
		t.Errorf("explicit kind overwritten: %q", recs[1].Kind)
	}
	if recs[0].Agent != AgentStyle {
		t.Error("agent attribution missing")
	}

	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Severity != SeverityMedium {
		t.Errorf("unknown severity should default to medium, got %s", issues[0].Severity)
	}
	if issues[0].Location != "para 3" {
		t.Errorf("location lost: %q", issues[0].Location)
	}

	if len(teaching) != 1 {
		t.Errorf("expected 1 teaching point, got %d", len(teaching))
	}
}

func TestFallbackFindings(t *testing.T) {
	recs := fallbackFindings(AgentVoice, "  The narrator's voice wobbles between formal and casual.  ")
	if len(recs) != 1 {
		t.Fatalf("expected 1 fallback recommendation, got %d", len(recs))
	}
	if recs[0].Severity != SeverityMedium {
		t.Errorf("fallback severity = %s, want medium", recs[0].Severity)
	}
	if strings.HasPrefix(recs[0].Text, " ") {
		t.Error("fallback text not trimmed")
	}

	if got := fallbackFindings(AgentVoice, "   "); got != nil {
		t.Errorf("blank response should yield no findings, got %v", got)
	}
}
