package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// stubCompleter returns a canned completion and records requests
type stubCompleter struct {
	text     string
	err      error
	partial  *Completion // returned alongside err when set
	requests []RunRequest
}

func (s *stubCompleter) Run(ctx context.Context, req RunRequest) (*Completion, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return s.partial, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Completion{
		Text:  s.text,
		Usage: Usage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300},
	}, nil
}

func mergedFixture() *MergedAnalysis {
	return &MergedAnalysis{
		Success: true,
		PerAgent: map[AgentKind]*AgentOutcome{
			AgentStyle: {Kind: AgentStyle, Succeeded: true},
		},
		Recommendations: []Recommendation{
			{Agent: AgentStyle, Severity: SeverityMedium, Text: "Vary sentence length.", Suggestion: "Split the run-ons."},
			{Agent: AgentVoice, Severity: SeverityLow, Text: "Lean into the narrator's dry humor."},
		},
		Issues: []Issue{
			{Agent: AgentContinuity, Severity: SeverityHigh, Description: "Eye color changes between chapters.", Location: "ch. 3"},
		},
	}
}

func TestBuildSynthesisPrompt_AllFindingsTraceable(t *testing.T) {
	merged := mergedFixture()
	conflicts := []Conflict{{
		Kind:             ConflictCharacterVsPlot,
		Severity:         ConflictModerate,
		AgentA:           AgentContinuity,
		AgentB:           AgentStructure,
		BridgeSuggestion: bridgeSuggestions[ConflictCharacterVsPlot][0],
		AuthorQuestion:   authorQuestions[ConflictCharacterVsPlot],
	}}

	prompt := BuildSynthesisPrompt(merged, conflicts, ToneDirect, "Writing level: intermediate")

	for _, rec := range merged.Recommendations {
		if !strings.Contains(prompt, rec.Text) {
			t.Errorf("recommendation %q missing from prompt", rec.Text)
		}
	}
	for _, issue := range merged.Issues {
		if !strings.Contains(prompt, issue.Description) {
			t.Errorf("issue %q missing from prompt", issue.Description)
		}
	}
	if !strings.Contains(prompt, "Split the run-ons.") {
		t.Error("suggestion missing from prompt")
	}
	if !strings.Contains(prompt, "ch. 3") {
		t.Error("issue location missing from prompt")
	}
	if !strings.Contains(prompt, bridgeSuggestions[ConflictCharacterVsPlot][0]) {
		t.Error("bridge suggestion missing from prompt")
	}
	if !strings.Contains(prompt, authorQuestions[ConflictCharacterVsPlot]) {
		t.Error("author question missing from prompt")
	}
	if !strings.Contains(prompt, "Writing level: intermediate") {
		t.Error("author context missing from prompt")
	}
}

func TestBuildSynthesisPrompt_UnknownToneFallsBack(t *testing.T) {
	prompt := BuildSynthesisPrompt(mergedFixture(), nil, Tone("sarcastic"), "")
	if !strings.Contains(prompt, toneDirectives[ToneEncouraging]) {
		t.Error("unknown tone should fall back to encouraging")
	}
}

func TestSynthesize(t *testing.T) {
	completer := &stubCompleter{text: "Your prose is strong; watch the eye-color slip in chapter 3."}
	synth := NewSynthesizer(completer)

	result, err := synth.Synthesize(context.Background(), mergedFixture(), nil, ToneEncouraging, "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if result.Narrative != completer.text {
		t.Errorf("narrative = %q", result.Narrative)
	}
	if len(completer.requests) != 1 || completer.requests[0].Label != "synthesizer" {
		t.Errorf("expected one synthesizer-labeled run, got %+v", completer.requests)
	}
}

func TestSynthesize_EmptyNarrativeFallsBack(t *testing.T) {
	synth := NewSynthesizer(&stubCompleter{text: ""})

	result, err := synth.Synthesize(context.Background(), mergedFixture(), nil, ToneEncouraging, "")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if !strings.Contains(result.Narrative, "Vary sentence length.") {
		t.Errorf("fallback narrative should render findings, got %q", result.Narrative)
	}
	// Two recommendations plus one issue in the fixture.
	if !strings.Contains(result.Narrative, "3 findings") {
		t.Errorf("fallback narrative should count its findings, got %q", result.Narrative)
	}
}

func TestSynthesize_RunnerError(t *testing.T) {
	synth := NewSynthesizer(&stubCompleter{err: fmt.Errorf("provider down")})

	if _, err := synth.Synthesize(context.Background(), mergedFixture(), nil, ToneEncouraging, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestQuickSynthesis(t *testing.T) {
	synth := NewSynthesizer(&stubCompleter{})

	empty := synth.QuickSynthesis(nil, ToneDirect)
	if empty == "" {
		t.Error("empty findings still need a response")
	}

	out := synth.QuickSynthesis([]string{"Trim the adverbs.", "Watch the POV slip."}, ToneDirect)
	if !strings.Contains(out, "Trim the adverbs.") || !strings.Contains(out, "Watch the POV slip.") {
		t.Errorf("findings missing from quick synthesis: %q", out)
	}
	if !strings.Contains(out, "2 points") {
		t.Errorf("quick synthesis should count its points, got %q", out)
	}

	one := synth.QuickSynthesis([]string{"Trim the adverbs."}, ToneAnalytical)
	if !strings.Contains(one, "1 point:") {
		t.Errorf("single finding should not pluralize, got %q", one)
	}
}
