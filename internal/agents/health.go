package agents

// healthDomains fixes the domain ordering for scoring and tie-breaks
var healthDomains = []string{"character", "plot", "prose", "pacing", "consistency"}

// domainAgent maps each health domain to the agent whose issues grade it
var domainAgent = map[string]AgentKind{
	"character":   AgentContinuity,
	"consistency": AgentContinuity,
	"plot":        AgentStructure,
	"prose":       AgentStyle,
	"pacing":      AgentStyle,
}

// domainWeights are the fixed overall-score weights
var domainWeights = map[string]float64{
	"character":   0.25,
	"plot":        0.25,
	"prose":       0.20,
	"pacing":      0.15,
	"consistency": 0.15,
}

const neutralHealth = 75.0

// StoryHealthAssessment is the aggregate score computed from merged
// outcomes
type StoryHealthAssessment struct {
	DomainScores  map[string]float64 `json:"domain_scores"`
	OverallScore  float64            `json:"overall_score"`
	OverallStatus string             `json:"overall_status"` // healthy, needs_attention, concerning
	TopStrengths  []string           `json:"top_strengths"`
	TopConcerns   []string           `json:"top_concerns"`
	PrimaryFocus  string             `json:"primary_focus"`
}

// AssessHealth computes per-domain and overall story health from agent
// outcomes. Domains whose agent is absent score a neutral 75.
func (c *ConflictReasoner) AssessHealth(outcomes map[AgentKind]*AgentOutcome) *StoryHealthAssessment {
	assessment := &StoryHealthAssessment{
		DomainScores: make(map[string]float64, len(healthDomains)),
	}

	overall := 0.0
	lowest := 101.0
	for _, domain := range healthDomains {
		score := neutralHealth
		if outcome, ok := outcomes[domainAgent[domain]]; ok && outcome != nil && outcome.Succeeded {
			score = domainScore(outcome)
		}
		assessment.DomainScores[domain] = score
		overall += score * domainWeights[domain]

		// Lowest domain wins primary focus; earlier domain wins ties.
		if score < lowest {
			lowest = score
			assessment.PrimaryFocus = domain
		}
	}
	assessment.OverallScore = overall

	switch {
	case overall >= 80:
		assessment.OverallStatus = "healthy"
	case overall >= 60:
		assessment.OverallStatus = "needs_attention"
	default:
		assessment.OverallStatus = "concerning"
	}

	assessment.TopStrengths = topStrengths(outcomes)
	assessment.TopConcerns = topConcerns(outcomes)

	return assessment
}

// domainScore applies the fixed issue-count penalty: 15 per high, 8 per
// medium, 3 per low, floored at 20.
func domainScore(outcome *AgentOutcome) float64 {
	var high, medium, low int
	for _, issue := range outcome.Issues {
		switch issue.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}

	score := 100.0 - float64(15*high+8*medium+3*low)
	if score < 20 {
		return 20
	}
	return score
}

// topStrengths extracts up to 3 positive findings in declaration order
func topStrengths(outcomes map[AgentKind]*AgentOutcome) []string {
	var strengths []string
	for _, kind := range DeclarationOrder {
		outcome, ok := outcomes[kind]
		if !ok || outcome == nil || !outcome.Succeeded {
			continue
		}
		for _, rec := range outcome.Recommendations {
			if rec.Severity == SeverityPositive || rec.Kind == "praise" {
				strengths = append(strengths, rec.Text)
				if len(strengths) == 3 {
					return strengths
				}
			}
		}
	}
	return strengths
}

// topConcerns extracts up to 3 high or medium severity issues in
// declaration order
func topConcerns(outcomes map[AgentKind]*AgentOutcome) []string {
	var concerns []string
	for _, kind := range DeclarationOrder {
		outcome, ok := outcomes[kind]
		if !ok || outcome == nil || !outcome.Succeeded {
			continue
		}
		for _, issue := range outcome.Issues {
			if issue.Severity == SeverityHigh || issue.Severity == SeverityMedium {
				concerns = append(concerns, issue.Description)
				if len(concerns) == 3 {
					return concerns
				}
			}
		}
	}
	return concerns
}
