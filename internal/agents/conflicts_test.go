package agents

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func outcomeWithRecs(kind AgentKind, texts ...string) *AgentOutcome {
	outcome := &AgentOutcome{Kind: kind, Succeeded: true}
	for _, text := range texts {
		outcome.Recommendations = append(outcome.Recommendations, Recommendation{
			Agent: kind,
			Kind:  string(kind),
			Text:  text,
		})
	}
	return outcome
}

func TestFindConflicts_CharacterVsPlot(t *testing.T) {
	reasoner := NewConflictReasoner()

	outcomes := map[AgentKind]*AgentOutcome{
		AgentContinuity: outcomeWithRecs(AgentContinuity,
			"Sarah is acting out of character here; she has avoided confrontation in every prior chapter."),
		AgentStructure: outcomeWithRecs(AgentStructure,
			"The plot requires this confrontation to set up the midpoint reversal."),
	}

	conflicts := reasoner.FindConflicts(outcomes)
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(conflicts))
	}

	c := conflicts[0]
	if c.Kind != ConflictCharacterVsPlot {
		t.Errorf("kind = %s, want character_vs_plot", c.Kind)
	}
	if c.AgentA != AgentContinuity || c.AgentB != AgentStructure {
		t.Errorf("pair = %s/%s, want continuity/structure", c.AgentA, c.AgentB)
	}
	if c.Severity != ConflictModerate {
		t.Errorf("severity = %s, want moderate (no tier keywords present)", c.Severity)
	}
	if c.BridgeSuggestion != bridgeSuggestions[ConflictCharacterVsPlot][0] {
		t.Error("bridge suggestion must be the deterministic first entry")
	}
	if c.AuthorQuestion == "" {
		t.Error("author question missing")
	}
}

func TestFindConflicts_NoConflict(t *testing.T) {
	reasoner := NewConflictReasoner()

	outcomes := map[AgentKind]*AgentOutcome{
		AgentStyle: outcomeWithRecs(AgentStyle, "Consider varying sentence openings."),
		AgentVoice: outcomeWithRecs(AgentVoice, "The narrator's wry tone lands well."),
	}

	if conflicts := reasoner.FindConflicts(outcomes); len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", conflicts)
	}
}

func TestFindConflicts_FailedAgentExcluded(t *testing.T) {
	reasoner := NewConflictReasoner()

	outcomes := map[AgentKind]*AgentOutcome{
		AgentContinuity: outcomeWithRecs(AgentContinuity, "This is out of character for Sarah."),
		AgentStructure: {
			Kind:      AgentStructure,
			Succeeded: false,
			Issues: []Issue{{
				Description: "the plot requires this confrontation",
			}},
		},
	}

	if conflicts := reasoner.FindConflicts(outcomes); len(conflicts) != 0 {
		t.Errorf("failed agent feedback must not contribute to conflicts, got %v", conflicts)
	}
}

func TestFindConflicts_SeverityCascade(t *testing.T) {
	reasoner := NewConflictReasoner()

	cases := []struct {
		name     string
		extra    string
		severity ConflictSeverity
	}{
		{"critical", "This is a fundamental break in her arc.", ConflictCritical},
		{"significant", "This is a notable departure from her arc.", ConflictSignificant},
		{"minor", "A slight wobble in her arc.", ConflictMinor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcomes := map[AgentKind]*AgentOutcome{
				AgentContinuity: outcomeWithRecs(AgentContinuity,
					"She is out of character here. "+tc.extra),
				AgentStructure: outcomeWithRecs(AgentStructure,
					"The plot requires this scene."),
			}

			conflicts := reasoner.FindConflicts(outcomes)
			if len(conflicts) != 1 {
				t.Fatalf("expected 1 conflict, got %d", len(conflicts))
			}
			if conflicts[0].Severity != tc.severity {
				t.Errorf("severity = %s, want %s", conflicts[0].Severity, tc.severity)
			}
		})
	}
}

func TestFindConflicts_OneConflictPerPair(t *testing.T) {
	reasoner := NewConflictReasoner()

	// Feedback matches both the character_vs_plot and style_vs_voice
	// patterns; only the first pattern may fire for the pair.
	outcomes := map[AgentKind]*AgentOutcome{
		AgentStyle: outcomeWithRecs(AgentStyle,
			"This feels out of character, and the prose is overwritten; simplify it."),
		AgentVoice: outcomeWithRecs(AgentVoice,
			"The plot requires this beat, and the density is part of the distinctive voice."),
	}

	conflicts := reasoner.FindConflicts(outcomes)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict per pair, got %d", len(conflicts))
	}
	if conflicts[0].Kind != ConflictCharacterVsPlot {
		t.Errorf("kind = %s, want the first matching pattern", conflicts[0].Kind)
	}
}

func TestFindConflicts_ExcerptBounded(t *testing.T) {
	reasoner := NewConflictReasoner()

	long := strings.Repeat("Sarah is acting out of character in this scene. ", 20)
	outcomes := map[AgentKind]*AgentOutcome{
		AgentContinuity: outcomeWithRecs(AgentContinuity, long),
		AgentStructure:  outcomeWithRecs(AgentStructure, "The plot requires the confrontation."),
	}

	conflicts := reasoner.FindConflicts(outcomes)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if len(conflicts[0].ExcerptA) > excerptLimit {
		t.Errorf("excerpt A is %d chars, limit %d", len(conflicts[0].ExcerptA), excerptLimit)
	}
	if len(conflicts[0].ExcerptB) > excerptLimit {
		t.Errorf("excerpt B is %d chars, limit %d", len(conflicts[0].ExcerptB), excerptLimit)
	}
}

func TestTruncateExcerpt_RuneBoundary(t *testing.T) {
	// "é" is two bytes, so the odd-length prefix forces the byte limit
	// to land mid-rune.
	long := "a" + strings.Repeat("é", 150)

	got := truncateExcerpt(long)
	if len(got) > excerptLimit {
		t.Errorf("excerpt is %d bytes, limit %d", len(got), excerptLimit)
	}
	if !utf8.ValidString(got) {
		t.Error("excerpt split a multi-byte rune")
	}
	if want := "a" + strings.Repeat("é", 99); got != want {
		t.Errorf("excerpt ends at byte %d, want rune boundary at %d", len(got), len(want))
	}

	short := "короткий отрывок"
	if truncateExcerpt(short) != short {
		t.Error("short excerpt must pass through untouched")
	}
}
