package agents

import (
	"math"
	"testing"
)

func outcomeWithIssues(kind AgentKind, severities ...Severity) *AgentOutcome {
	outcome := &AgentOutcome{Kind: kind, Succeeded: true}
	for _, sev := range severities {
		outcome.Issues = append(outcome.Issues, Issue{
			Agent:       kind,
			Kind:        string(kind),
			Severity:    sev,
			Description: "issue at " + string(sev),
		})
	}
	return outcome
}

func TestAssessHealth_AllAbsent(t *testing.T) {
	reasoner := NewConflictReasoner()

	health := reasoner.AssessHealth(map[AgentKind]*AgentOutcome{})

	for domain, score := range health.DomainScores {
		if score != neutralHealth {
			t.Errorf("domain %s = %v, want neutral %v", domain, score, neutralHealth)
		}
	}
	if health.OverallScore != neutralHealth {
		t.Errorf("overall = %v, want %v", health.OverallScore, neutralHealth)
	}
	if health.OverallStatus != "needs_attention" {
		t.Errorf("status = %s, want needs_attention", health.OverallStatus)
	}
	// All domains tie at neutral; the first declared domain wins.
	if health.PrimaryFocus != "character" {
		t.Errorf("primary focus = %s, want character", health.PrimaryFocus)
	}
}

func TestAssessHealth_CleanAgentScoresHundred(t *testing.T) {
	reasoner := NewConflictReasoner()

	health := reasoner.AssessHealth(map[AgentKind]*AgentOutcome{
		AgentStyle: outcomeWithIssues(AgentStyle),
	})

	if health.DomainScores["prose"] != 100 {
		t.Errorf("prose = %v, want 100", health.DomainScores["prose"])
	}
	if health.DomainScores["pacing"] != 100 {
		t.Errorf("pacing = %v, want 100", health.DomainScores["pacing"])
	}
	if health.DomainScores["plot"] != neutralHealth {
		t.Errorf("absent agent's domain = %v, want neutral", health.DomainScores["plot"])
	}

	// 0.25*75 + 0.25*75 + 0.20*100 + 0.15*100 + 0.15*75 = 83.75
	if math.Abs(health.OverallScore-83.75) > 1e-9 {
		t.Errorf("overall = %v, want 83.75", health.OverallScore)
	}
	if health.OverallStatus != "healthy" {
		t.Errorf("status = %s, want healthy", health.OverallStatus)
	}
}

func TestAssessHealth_IssuePenalties(t *testing.T) {
	reasoner := NewConflictReasoner()

	health := reasoner.AssessHealth(map[AgentKind]*AgentOutcome{
		AgentContinuity: outcomeWithIssues(AgentContinuity, SeverityHigh, SeverityHigh, SeverityMedium, SeverityLow),
	})

	// 100 - 2*15 - 8 - 3 = 59, applied to both continuity-fed domains
	if health.DomainScores["character"] != 59 {
		t.Errorf("character = %v, want 59", health.DomainScores["character"])
	}
	if health.DomainScores["consistency"] != 59 {
		t.Errorf("consistency = %v, want 59", health.DomainScores["consistency"])
	}
	if health.PrimaryFocus != "character" {
		t.Errorf("primary focus = %s, want character (lowest, earliest)", health.PrimaryFocus)
	}
}

func TestAssessHealth_ScoreFloor(t *testing.T) {
	reasoner := NewConflictReasoner()

	many := make([]Severity, 10)
	for i := range many {
		many[i] = SeverityHigh
	}
	health := reasoner.AssessHealth(map[AgentKind]*AgentOutcome{
		AgentStructure: outcomeWithIssues(AgentStructure, many...),
	})

	if health.DomainScores["plot"] != 20 {
		t.Errorf("plot = %v, want floor 20", health.DomainScores["plot"])
	}
}

func TestAssessHealth_FailedAgentIsNeutral(t *testing.T) {
	reasoner := NewConflictReasoner()

	health := reasoner.AssessHealth(map[AgentKind]*AgentOutcome{
		AgentStyle: {Kind: AgentStyle, Succeeded: false, Issues: []Issue{{Severity: SeverityHigh}}},
	})

	if health.DomainScores["prose"] != neutralHealth {
		t.Errorf("failed agent's domain = %v, want neutral", health.DomainScores["prose"])
	}
}

func TestAssessHealth_TopLists(t *testing.T) {
	reasoner := NewConflictReasoner()

	style := outcomeWithIssues(AgentStyle, SeverityHigh, SeverityMedium, SeverityLow)
	style.Recommendations = []Recommendation{
		{Agent: AgentStyle, Severity: SeverityPositive, Text: "Strong scene openings."},
		{Agent: AgentStyle, Kind: "praise", Severity: SeverityMedium, Text: "Dialogue tags stay invisible."},
		{Agent: AgentStyle, Severity: SeverityMedium, Text: "Vary paragraph length."},
	}
	voice := outcomeWithIssues(AgentVoice, SeverityHigh)
	voice.Recommendations = []Recommendation{
		{Agent: AgentVoice, Severity: SeverityPositive, Text: "Distinct narrator voice."},
		{Agent: AgentVoice, Severity: SeverityPositive, Text: "Consistent register."},
	}

	health := reasoner.AssessHealth(map[AgentKind]*AgentOutcome{
		AgentStyle: style,
		AgentVoice: voice,
	})

	if len(health.TopStrengths) != 3 {
		t.Fatalf("strengths = %d, want capped at 3", len(health.TopStrengths))
	}
	if health.TopStrengths[0] != "Strong scene openings." {
		t.Errorf("strengths must follow declaration order, got %q first", health.TopStrengths[0])
	}

	// style contributes high+medium, voice contributes high; low excluded
	if len(health.TopConcerns) != 3 {
		t.Fatalf("concerns = %d, want 3", len(health.TopConcerns))
	}
}
