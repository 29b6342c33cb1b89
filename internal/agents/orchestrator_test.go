package agents

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"maxwell/internal/domain/personalization"
)

// stubAgent returns a canned outcome (or error) after an optional delay
type stubAgent struct {
	kind    AgentKind
	outcome *AgentOutcome
	err     error
	delay   time.Duration
}

func (s *stubAgent) Kind() AgentKind { return s.kind }

func (s *stubAgent) Analyze(ctx context.Context, input AnalysisInput) (*AgentOutcome, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return s.outcome, s.err
	}
	return s.outcome, nil
}

func succeedingAgent(kind AgentKind, recTexts ...string) *stubAgent {
	outcome := &AgentOutcome{Kind: kind, Succeeded: true}
	for _, text := range recTexts {
		outcome.Recommendations = append(outcome.Recommendations, Recommendation{
			Agent:    kind,
			Kind:     string(kind),
			Severity: SeverityMedium,
			Text:     text,
		})
	}
	return &stubAgent{kind: kind, outcome: outcome}
}

func analyzeReq(agents ...AgentKind) AnalyzeRequest {
	return AnalyzeRequest{
		Text:          "The rain fell sideways, and Sarah ran.",
		UserID:        uuid.New(),
		SessionID:     "sess-1",
		EnabledAgents: agents,
	}
}

func TestOrchestrator_NoAgentsEnabled(t *testing.T) {
	o := NewOrchestrator(map[AgentKind]Agent{}, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq())
	if merged.Success {
		t.Error("empty agent list must not succeed")
	}
	if len(merged.Issues) != 1 || merged.Issues[0].Severity != SeverityHigh {
		t.Errorf("expected one high config issue, got %v", merged.Issues)
	}
}

func TestOrchestrator_PartialFailure(t *testing.T) {
	set := map[AgentKind]Agent{
		AgentStyle:      succeedingAgent(AgentStyle, "Vary sentence length."),
		AgentContinuity: &stubAgent{kind: AgentContinuity, err: fmt.Errorf("provider timeout")},
		AgentStructure:  succeedingAgent(AgentStructure, "The midpoint lands early."),
		AgentVoice:      succeedingAgent(AgentVoice, "Narrator register is steady."),
	}
	o := NewOrchestrator(set, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq(DeclarationOrder...))

	if !merged.Success {
		t.Error("one failed agent must not fail the merge")
	}
	if len(merged.PerAgent) != 4 {
		t.Fatalf("expected 4 per-agent entries, got %d", len(merged.PerAgent))
	}
	failed := merged.PerAgent[AgentContinuity]
	if failed.Succeeded {
		t.Error("failed agent marked succeeded")
	}
	if len(failed.Issues) != 1 || failed.Issues[0].Severity != SeverityHigh {
		t.Errorf("failed agent should carry one high error issue, got %v", failed.Issues)
	}
	if len(merged.Recommendations) != 3 {
		t.Errorf("expected 3 recommendations from surviving agents, got %d", len(merged.Recommendations))
	}
}

func TestOrchestrator_FailedAgentPartialUsageCounts(t *testing.T) {
	partial := &AgentOutcome{
		Kind:  AgentContinuity,
		Usage: Usage{PromptTokens: 80, CompletionTokens: 40, TotalTokens: 120},
		Cost:  decimal.NewFromFloat(0.004),
	}
	set := map[AgentKind]Agent{
		AgentStyle:      succeedingAgent(AgentStyle, "Vary sentence length."),
		AgentContinuity: &stubAgent{kind: AgentContinuity, outcome: partial, err: fmt.Errorf("provider reset mid-run")},
	}
	o := NewOrchestrator(set, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle, AgentContinuity))

	if merged.TotalTokens != 120 {
		t.Errorf("tokens spent before the failure must count, got %d", merged.TotalTokens)
	}
	if !merged.TotalCost.Equal(decimal.NewFromFloat(0.004)) {
		t.Errorf("cost spent before the failure must count, got %s", merged.TotalCost)
	}
	failed := merged.PerAgent[AgentContinuity]
	if failed.Succeeded {
		t.Error("partial outcome must stay marked failed")
	}
	if len(failed.Issues) != 1 || failed.Issues[0].Severity != SeverityHigh {
		t.Errorf("failed agent should carry one high error issue, got %v", failed.Issues)
	}
	if len(merged.Recommendations) != 1 {
		t.Errorf("only the surviving agent contributes recommendations, got %d", len(merged.Recommendations))
	}
}

func TestOrchestrator_AllFailed(t *testing.T) {
	set := map[AgentKind]Agent{
		AgentStyle: &stubAgent{kind: AgentStyle, err: fmt.Errorf("down")},
		AgentVoice: &stubAgent{kind: AgentVoice, err: fmt.Errorf("down")},
	}
	o := NewOrchestrator(set, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle, AgentVoice))

	if len(merged.Recommendations) != 0 {
		t.Errorf("no recommendations expected, got %d", len(merged.Recommendations))
	}
	if len(merged.Issues) != 2 {
		t.Errorf("error issues must stay visible when every agent fails, got %d", len(merged.Issues))
	}
}

func TestOrchestrator_UnknownAgentKind(t *testing.T) {
	o := NewOrchestrator(map[AgentKind]Agent{
		AgentStyle: succeedingAgent(AgentStyle, "Tighten the opening."),
	}, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle, AgentKind("plot_doctor")))

	if len(merged.PerAgent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(merged.PerAgent))
	}
	unknown := merged.PerAgent[AgentKind("plot_doctor")]
	if unknown == nil || unknown.Succeeded {
		t.Error("unknown kind must produce a failed outcome")
	}
}

func TestOrchestrator_Dedup(t *testing.T) {
	set := map[AgentKind]Agent{
		AgentStyle: succeedingAgent(AgentStyle, "Vary sentence length.", "Add more dialogue."),
		AgentVoice: succeedingAgent(AgentVoice, "vary   sentence length"),
	}
	o := NewOrchestrator(set, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle, AgentVoice))

	if len(merged.Recommendations) != 2 {
		t.Fatalf("expected 2 after dedup, got %d: %v", len(merged.Recommendations), merged.Recommendations)
	}
	// Style precedes voice in declaration order, so its phrasing survives.
	if merged.Recommendations[0].Agent != AgentStyle {
		t.Errorf("first survivor should come from style, got %s", merged.Recommendations[0].Agent)
	}
}

func TestOrchestrator_DedupContainment(t *testing.T) {
	set := map[AgentKind]Agent{
		AgentStyle:     succeedingAgent(AgentStyle, "Add dialogue"),
		AgentStructure: succeedingAgent(AgentStructure, "Add dialogue to the confrontation scene"),
	}
	o := NewOrchestrator(set, nil, nil)

	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle, AgentStructure))
	if len(merged.Recommendations) != 1 {
		t.Errorf("containment should collapse to 1, got %d", len(merged.Recommendations))
	}
}

type stubSuppression struct {
	kinds map[string]bool
}

func (s *stubSuppression) ShouldSuppress(ctx context.Context, userID uuid.UUID, kind string) bool {
	return s.kinds[kind]
}

func TestOrchestrator_SuppressionSparesHighSeverity(t *testing.T) {
	outcome := &AgentOutcome{
		Kind: AgentStyle, Succeeded: true,
		Recommendations: []Recommendation{
			{Agent: AgentStyle, Kind: "adverb_use", Severity: SeverityMedium, Text: "Trim the adverbs."},
			{Agent: AgentStyle, Kind: "adverb_use", Severity: SeverityHigh, Text: "Adverb stacking is drowning the action lines."},
			{Agent: AgentStyle, Kind: "pacing", Severity: SeverityLow, Text: "A touch slow in the middle."},
		},
	}
	set := map[AgentKind]Agent{AgentStyle: &stubAgent{kind: AgentStyle, outcome: outcome}}
	o := NewOrchestrator(set, &stubSuppression{kinds: map[string]bool{"adverb_use": true}}, nil)

	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle))

	if len(merged.Recommendations) != 2 {
		t.Fatalf("expected 2 (high kept, medium muted), got %d", len(merged.Recommendations))
	}
	for _, rec := range merged.Recommendations {
		if rec.Kind == "adverb_use" && rec.Severity != SeverityHigh {
			t.Errorf("suppressed kind survived at %s severity", rec.Severity)
		}
	}
}

func TestOrchestrator_ConcurrentFanOut(t *testing.T) {
	set := map[AgentKind]Agent{}
	for _, kind := range []AgentKind{AgentStyle, AgentContinuity, AgentStructure} {
		agent := succeedingAgent(kind, "Finding from "+string(kind))
		agent.delay = 100 * time.Millisecond
		set[kind] = agent
	}
	o := NewOrchestrator(set, nil, nil)

	start := time.Now()
	merged := o.Analyze(context.Background(), analyzeReq(AgentStyle, AgentContinuity, AgentStructure))
	elapsed := time.Since(start)

	if elapsed > 250*time.Millisecond {
		t.Errorf("fan-out took %v; agents appear to run sequentially", elapsed)
	}
	if len(merged.SucceededKinds()) != 3 {
		t.Errorf("expected 3 succeeded agents, got %v", merged.SucceededKinds())
	}
}

func TestOrchestrator_DeterministicMerge(t *testing.T) {
	set := map[AgentKind]Agent{
		AgentStyle:      succeedingAgent(AgentStyle, "S1", "S2"),
		AgentContinuity: succeedingAgent(AgentContinuity, "C1"),
		AgentStructure:  succeedingAgent(AgentStructure, "T1"),
		AgentVoice:      succeedingAgent(AgentVoice, "V1"),
	}
	o := NewOrchestrator(set, nil, nil)

	first := o.Analyze(context.Background(), analyzeReq(DeclarationOrder...))
	second := o.Analyze(context.Background(), analyzeReq(DeclarationOrder...))

	if !reflect.DeepEqual(first.Recommendations, second.Recommendations) {
		t.Error("merged recommendations differ between identical runs")
	}
	if !reflect.DeepEqual(first.Issues, second.Issues) {
		t.Error("merged issues differ between identical runs")
	}
}

type stubInsights struct {
	insights *personalization.Insights
	calls    int
}

func (s *stubInsights) GetInsights(ctx context.Context, userID uuid.UUID) (*personalization.Insights, error) {
	s.calls++
	return s.insights, nil
}

func TestOrchestrator_SingleInsightsLookup(t *testing.T) {
	provider := &stubInsights{insights: &personalization.Insights{WritingLevel: "intermediate"}}
	set := map[AgentKind]Agent{
		AgentStyle: succeedingAgent(AgentStyle, "S1"),
		AgentVoice: succeedingAgent(AgentVoice, "V1"),
	}
	o := NewOrchestrator(set, nil, provider)

	req := analyzeReq(AgentStyle, AgentVoice)
	req.IncludeAuthorInsights = true
	merged := o.Analyze(context.Background(), req)

	if merged.AuthorInsights == nil || merged.AuthorInsights.WritingLevel != "intermediate" {
		t.Error("insights not attached")
	}
	if provider.calls != 1 {
		t.Errorf("insights looked up %d times, want exactly 1 per orchestration", provider.calls)
	}
}

func TestOrchestrator_QuickCheck(t *testing.T) {
	set := map[AgentKind]Agent{
		AgentStyle: succeedingAgent(AgentStyle, "Prose finding"),
	}
	o := NewOrchestrator(set, nil, nil)

	merged := o.QuickCheck(context.Background(), "Prose", analyzeReq())
	if !merged.Success {
		t.Error("known focus area should run")
	}
	if len(merged.PerAgent) != 1 {
		t.Errorf("quick check must run exactly one agent, got %d", len(merged.PerAgent))
	}

	bad := o.QuickCheck(context.Background(), "vibes", analyzeReq())
	if bad.Success {
		t.Error("unknown focus area must fail fast")
	}
	if len(bad.Issues) != 1 || !strings.Contains(bad.Issues[0].Description, "vibes") {
		t.Errorf("expected a config issue naming the focus, got %v", bad.Issues)
	}
}
