package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"maxwell/internal/domain/personalization"
	"maxwell/internal/metrics"
	"maxwell/pkg/logger"
)

// SuppressionChecker mutes suggestion kinds the user keeps dismissing
type SuppressionChecker interface {
	ShouldSuppress(ctx context.Context, userID uuid.UUID, kind string) bool
}

// InsightsProvider supplies opaque author personalization data
type InsightsProvider interface {
	GetInsights(ctx context.Context, userID uuid.UUID) (*personalization.Insights, error)
}

// Orchestrator fans one text out to multiple agents concurrently and
// merges their outcomes with dedup and suppression.
type Orchestrator struct {
	agents      map[AgentKind]Agent
	suppression SuppressionChecker
	insights    InsightsProvider
	log         *logger.Logger
}

// NewOrchestrator creates an orchestrator over a fixed agent set.
// suppression and insights may be nil.
func NewOrchestrator(agentSet map[AgentKind]Agent, suppression SuppressionChecker, insights InsightsProvider) *Orchestrator {
	return &Orchestrator{
		agents:      agentSet,
		suppression: suppression,
		insights:    insights,
		log:         logger.Get().With("component", "orchestrator"),
	}
}

// AnalyzeRequest is one orchestration request
type AnalyzeRequest struct {
	Text                  string
	UserID                uuid.UUID
	ManuscriptID          uuid.UUID
	ChapterID             uuid.UUID
	SessionID             string
	EnabledAgents         []AgentKind
	ContextText           string
	MaxTokens             int
	IncludeAuthorInsights bool
}

// agentResult carries one agent's outcome back over the fan-in channel
type agentResult struct {
	kind    AgentKind
	outcome *AgentOutcome
	err     error
}

// Analyze runs the enabled agents concurrently against the same text and
// merges their outcomes. Partial failure is the normal case: one agent's
// error never cancels its siblings, and the merged result still reports
// success as long as the fan-out itself ran.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) *MergedAnalysis {
	start := time.Now()

	if len(req.EnabledAgents) == 0 {
		metrics.Orchestrations.WithLabelValues("failed").Inc()
		return &MergedAnalysis{
			Success:  false,
			PerAgent: map[AgentKind]*AgentOutcome{},
			Issues: []Issue{{
				Kind:        "config",
				Severity:    SeverityHigh,
				Description: "No agents enabled for this analysis request",
			}},
		}
	}

	o.log.Infof("Starting fan-out to %d agents", len(req.EnabledAgents))

	results := make(chan agentResult, len(req.EnabledAgents))
	launched := 0

	for _, kind := range req.EnabledAgents {
		agent, ok := o.agents[kind]
		if !ok {
			results <- agentResult{kind: kind, err: fmt.Errorf("unknown agent kind %q", kind)}
			launched++
			continue
		}

		launched++
		go func(kind AgentKind, agent Agent) {
			defer func() {
				if r := recover(); r != nil {
					results <- agentResult{kind: kind, err: fmt.Errorf("agent panicked: %v", r)}
				}
			}()

			// Each agent gets its own copy of the input; no shared
			// state crosses the fan-out boundary.
			outcome, err := agent.Analyze(ctx, AnalysisInput{
				Text:        req.Text,
				ContextText: req.ContextText,
				UserID:      req.UserID.String(),
				SessionID:   req.SessionID,
				MaxTokens:   req.MaxTokens,
			})
			results <- agentResult{kind: kind, outcome: outcome, err: err}
		}(kind, agent)
	}

	merged := &MergedAnalysis{
		Success:  true,
		PerAgent: make(map[AgentKind]*AgentOutcome, launched),
	}

	failures := 0
	for i := 0; i < launched; i++ {
		res := <-results
		if res.err != nil {
			failures++
			o.log.Errorf("Agent %s failed: %v", res.kind, res.err)
			// A failed agent may still carry partial usage from calls
			// made before the error; keep it so totals stay honest.
			failed := res.outcome
			if failed == nil {
				failed = &AgentOutcome{Kind: res.kind}
			}
			failed.Succeeded = false
			failed.Issues = []Issue{{
				Agent:       res.kind,
				Kind:        "error",
				Severity:    SeverityHigh,
				Description: fmt.Sprintf("Agent %s failed: %v", res.kind, res.err),
			}}
			merged.PerAgent[res.kind] = failed
			continue
		}
		merged.PerAgent[res.kind] = res.outcome
	}

	// Merge in declaration order so re-runs over the same outcomes are
	// byte-identical.
	var allRecs []Recommendation
	var allIssues []Issue
	for _, kind := range DeclarationOrder {
		outcome, ok := merged.PerAgent[kind]
		if !ok {
			continue
		}
		merged.TotalCost = merged.TotalCost.Add(outcome.Cost)
		merged.TotalTokens += outcome.Usage.TotalTokens
		if !outcome.Succeeded {
			continue
		}
		allRecs = append(allRecs, outcome.Recommendations...)
		allIssues = append(allIssues, outcome.Issues...)
	}

	merged.Recommendations = o.filterSuppressed(ctx, req.UserID, dedupRecommendations(allRecs))
	merged.Issues = dedupIssues(allIssues)

	// Failed agents' error entries stay visible even when every agent
	// failed and the recommendation list is empty.
	if failures == launched {
		for _, kind := range DeclarationOrder {
			if outcome, ok := merged.PerAgent[kind]; ok && !outcome.Succeeded {
				merged.Issues = append(merged.Issues, outcome.Issues...)
			}
		}
	}

	if req.IncludeAuthorInsights && o.insights != nil {
		// One lookup per orchestration, never per agent.
		insights, err := o.insights.GetInsights(ctx, req.UserID)
		if err != nil {
			o.log.Warnf("Insights lookup failed for %s: %v", req.UserID, err)
		} else {
			merged.AuthorInsights = insights
		}
	}

	// Wall-clock latency: with a concurrent fan-out this approximates the
	// slowest agent, not the sum.
	merged.TotalLatencyMs = time.Since(start).Milliseconds()

	status := "success"
	if failures > 0 && failures < launched {
		status = "partial"
	} else if failures == launched {
		status = "failed"
	}
	metrics.Orchestrations.WithLabelValues(status).Inc()
	metrics.OrchestrationDuration.Observe(time.Since(start).Seconds())

	o.log.Infof("Fan-out complete: %d/%d agents succeeded, %d recommendations, %d issues (took %v)",
		launched-failures, launched, len(merged.Recommendations), len(merged.Issues), time.Since(start))

	return merged
}

// QuickCheck runs a single agent selected by focus area. Unknown focus
// areas report a non-success result immediately, never a retry.
func (o *Orchestrator) QuickCheck(ctx context.Context, focus string, req AnalyzeRequest) *MergedAnalysis {
	kind, ok := focusAreas[strings.ToLower(strings.TrimSpace(focus))]
	if !ok {
		return &MergedAnalysis{
			Success:  false,
			PerAgent: map[AgentKind]*AgentOutcome{},
			Issues: []Issue{{
				Kind:        "config",
				Severity:    SeverityHigh,
				Description: fmt.Sprintf("Unknown focus area %q", focus),
			}},
		}
	}

	req.EnabledAgents = []AgentKind{kind}
	return o.Analyze(ctx, req)
}

// filterSuppressed removes recommendations of suppressed kinds, except
// high severity findings which are never muted.
func (o *Orchestrator) filterSuppressed(ctx context.Context, userID uuid.UUID, recs []Recommendation) []Recommendation {
	if o.suppression == nil {
		return recs
	}

	kept := recs[:0]
	for _, rec := range recs {
		if rec.Severity != SeverityHigh && o.suppression.ShouldSuppress(ctx, userID, rec.Kind) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// normalizeFinding case-folds and collapses whitespace for duplicate checks
func normalizeFinding(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// isDuplicate reports whether two normalized findings are identical or one
// contains the other, so near-duplicate phrasing collapses to one entry
func isDuplicate(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func dedupRecommendations(recs []Recommendation) []Recommendation {
	var out []Recommendation
	var seen []string
	for _, rec := range recs {
		norm := normalizeFinding(rec.Text)
		dup := false
		for _, s := range seen {
			if isDuplicate(norm, s) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, norm)
		out = append(out, rec)
	}
	return out
}

func dedupIssues(issues []Issue) []Issue {
	var out []Issue
	var seen []string
	for _, issue := range issues {
		norm := normalizeFinding(issue.Description)
		dup := false
		for _, s := range seen {
			if isDuplicate(norm, s) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, norm)
		out = append(out, issue)
	}
	return out
}
