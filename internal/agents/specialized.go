package agents

import (
	"context"
	"fmt"
	"time"

	"maxwell/internal/adapters/ai"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// AnalysisInput is the per-agent slice of an orchestration request. Each
// agent gets its own copy; agents never share state during fan-out.
type AnalysisInput struct {
	Text        string
	ContextText string
	UserID      string
	SessionID   string
	MaxTokens   int
}

// Agent is one specialized analysis capability
type Agent interface {
	Kind() AgentKind
	Analyze(ctx context.Context, input AnalysisInput) (*AgentOutcome, error)
}

// specializedAgent implements Agent for one kind using its static spec
type specializedAgent struct {
	kind   AgentKind
	spec   agentSpec
	runner Completer
	log    *logger.Logger
}

// NewAgentSet builds one agent per kind, keyed for the orchestrator. The
// map is built once at startup; there is no agent class hierarchy.
func NewAgentSet(runner Completer) map[AgentKind]Agent {
	set := make(map[AgentKind]Agent, len(DeclarationOrder))
	for _, kind := range DeclarationOrder {
		set[kind] = &specializedAgent{
			kind:   kind,
			spec:   agentSpecs[kind],
			runner: runner,
			log:    logger.Get().With("component", "agent", "kind", string(kind)),
		}
	}
	return set
}

func (a *specializedAgent) Kind() AgentKind {
	return a.kind
}

// Analyze runs one specialized analysis pass over the text
func (a *specializedAgent) Analyze(ctx context.Context, input AnalysisInput) (*AgentOutcome, error) {
	if input.Text == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty analysis text")
	}

	start := time.Now()

	userPrompt := buildAnalysisPrompt(input)
	completion, err := a.runner.Run(ctx, RunRequest{
		Label:       string(a.kind),
		System:      a.spec.systemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: userPrompt}},
		ToolNames:   a.spec.toolNames,
		Temperature: a.spec.temperature,
		MaxTokens:   input.MaxTokens,
		UserID:      input.UserID,
		SessionID:   input.SessionID,
	})
	if err != nil {
		if completion != nil && completion.Usage.TotalTokens > 0 {
			// Tokens were spent before the failure; hand back a failed
			// outcome so the orchestrator still counts the usage.
			return &AgentOutcome{
				Kind:      a.kind,
				Succeeded: false,
				Usage:     completion.Usage,
				Cost:      completion.Cost,
				LatencyMs: time.Since(start).Milliseconds(),
			}, err
		}
		return nil, err
	}

	outcome := &AgentOutcome{
		Kind:      a.kind,
		Succeeded: true,
		Usage:     completion.Usage,
		Cost:      completion.Cost,
		LatencyMs: time.Since(start).Milliseconds(),
	}

	parsed, parseErr := ExtractStructured(completion.Text)
	if parseErr != nil {
		// Malformed structured output is not an error: the raw text
		// becomes one generic recommendation.
		a.log.Debugf("Structured parse failed, using raw fallback: %s", parseErr.Reason)
		outcome.Recommendations = fallbackFindings(a.kind, completion.Text)
		return outcome, nil
	}

	outcome.Recommendations, outcome.Issues, outcome.TeachingPoints = decodeFindings(a.kind, parsed)
	return outcome, nil
}

func buildAnalysisPrompt(input AnalysisInput) string {
	if input.ContextText == "" {
		return fmt.Sprintf("Analyze this passage:\n\n%s", input.Text)
	}
	return fmt.Sprintf("Story context:\n%s\n\nAnalyze this passage:\n\n%s", input.ContextText, input.Text)
}
