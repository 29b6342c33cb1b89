package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"maxwell/internal/adapters/ai"
	"maxwell/internal/domain/aiusage"
	"maxwell/internal/metrics"
	"maxwell/internal/tools"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// Completer abstracts the completion runner so agents, synthesizer, and
// conversation front can be tested with doubles
type Completer interface {
	Run(ctx context.Context, req RunRequest) (*Completion, error)
}

// loopPhase is the explicit state of the tool-calling loop
type loopPhase int

const (
	phaseAwaitingModel loopPhase = iota
	phaseExecutingTools
	phaseDone
)

// Runner drives LLM completions with bounded tool-calling. It is the single
// place that talks to the provider registry, so cost tracking and usage
// recording live here.
type Runner struct {
	providers     *ai.ProviderRegistry
	toolRegistry  *tools.Registry
	provider      string
	model         string
	maxIterations int
	costTracker   *CostTracker
	usageRecorder aiusage.Recorder
	log           *logger.Logger
}

// NewRunner creates a runner bound to a default provider and model.
// usageRecorder may be nil; cost tracking still applies.
func NewRunner(
	providers *ai.ProviderRegistry,
	toolRegistry *tools.Registry,
	provider string,
	model string,
	maxIterations int,
	costTracker *CostTracker,
	usageRecorder aiusage.Recorder,
) *Runner {
	if maxIterations <= 0 {
		maxIterations = 8
	}
	if usageRecorder == nil {
		usageRecorder = aiusage.NoopRecorder{}
	}
	return &Runner{
		providers:     providers,
		toolRegistry:  toolRegistry,
		provider:      provider,
		model:         model,
		maxIterations: maxIterations,
		costTracker:   costTracker,
		usageRecorder: usageRecorder,
		log:           logger.Get().With("component", "agent_runner"),
	}
}

var _ Completer = (*Runner)(nil)

// RunRequest describes one completion request
type RunRequest struct {
	Label       string // agent kind or "synthesizer", for accounting
	System      string
	Messages    []ai.Message
	ToolNames   []string
	Temperature float64
	MaxTokens   int
	UserID      string
	SessionID   string
}

// Completion is the final result of a run
type Completion struct {
	Text      string
	Usage     Usage
	Cost      decimal.Decimal
	ToolCalls int
}

// Run executes the bounded tool-calling state machine: awaiting_model ->
// executing_tools -> awaiting_model -> ... -> done. On exceeding the
// iteration budget the last text received is returned as a degraded but
// valid completion. A provider error after the first round trip returns
// the partial completion alongside the error, so usage spent before the
// failure still reaches accounting.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Completion, error) {
	provider, err := r.providers.Get(r.provider)
	if err != nil {
		return nil, errors.Wrapf(err, "provider %q", r.provider)
	}

	modelInfo, err := provider.GetModel(ctx, r.model)
	if err != nil {
		return nil, errors.Wrapf(err, "model %q", r.model)
	}

	toolSet := r.toolRegistry.Subset(req.ToolNames)
	toolDefs := make([]ai.ToolDefinition, 0, len(toolSet))
	toolsByName := make(map[string]tools.Tool, len(toolSet))
	for _, t := range toolSet {
		toolsByName[t.Name()] = t
		toolDefs = append(toolDefs, ai.ToolDefinition{
			Type: "function",
			Function: ai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	messages := make([]ai.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)

	completion := &Completion{}
	phase := phaseAwaitingModel
	iterations := 0
	lastText := ""
	start := time.Now()

	for phase != phaseDone {
		switch phase {
		case phaseAwaitingModel:
			if iterations >= r.maxIterations {
				// Iteration budget exhausted: use whatever we have.
				r.log.Warnf("Tool loop hit max iterations (%d) for %s, returning last text", r.maxIterations, req.Label)
				phase = phaseDone
				continue
			}
			iterations++

			resp, err := provider.Chat(ctx, ai.ChatRequest{
				Model:       r.model,
				Messages:    messages,
				Tools:       toolDefs,
				Temperature: req.Temperature,
				MaxTokens:   req.MaxTokens,
			})
			if err != nil {
				metrics.AgentCalls.WithLabelValues(req.Label, r.model, "error").Inc()
				// Earlier iterations may have spent tokens already;
				// return what accumulated so callers can bill it.
				return completion, errors.Wrapf(err, "chat completion for %s", req.Label)
			}

			callCost := r.costTracker.RecordUsage(modelInfo, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			completion.Usage.Add(Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			})
			completion.Cost = completion.Cost.Add(callCost)
			metrics.AgentCalls.WithLabelValues(req.Label, r.model, "success").Inc()
			metrics.AgentTokens.WithLabelValues(req.Label, r.model, "input").Add(float64(resp.Usage.PromptTokens))
			metrics.AgentTokens.WithLabelValues(req.Label, r.model, "output").Add(float64(resp.Usage.CompletionTokens))
			costF, _ := callCost.Float64()
			metrics.AgentCost.WithLabelValues(req.Label, r.model).Add(costF)

			if len(resp.Choices) == 0 {
				phase = phaseDone
				continue
			}

			choice := resp.Choices[0]
			if choice.Message.Content != "" {
				lastText = choice.Message.Content
			}

			if choice.FinishReason == ai.FinishReasonToolCalls && len(choice.Message.ToolCalls) > 0 {
				messages = append(messages, choice.Message)
				phase = phaseExecutingTools
				// Stash the pending calls on the message we just appended
				continue
			}
			phase = phaseDone

		case phaseExecutingTools:
			pending := messages[len(messages)-1].ToolCalls
			for _, call := range pending {
				result := r.executeTool(ctx, toolsByName, call)
				completion.ToolCalls++
				messages = append(messages, ai.Message{
					Role:       ai.RoleTool,
					Content:    result,
					ToolCallID: call.ID,
					Name:       call.Function.Name,
				})
			}
			phase = phaseAwaitingModel
		}
	}

	completion.Text = lastText
	latency := time.Since(start)
	metrics.AgentLatency.WithLabelValues(req.Label, r.model).Observe(latency.Seconds())

	r.recordUsage(ctx, req, modelInfo, completion, latency)

	return completion, nil
}

// executeTool runs one tool call. Errors are converted into a tool-result
// string fed back to the model so the conversation continues.
func (r *Runner) executeTool(ctx context.Context, toolsByName map[string]tools.Tool, call ai.ToolCall) string {
	name := call.Function.Name
	start := time.Now()

	t, ok := toolsByName[name]
	if !ok {
		metrics.ToolExecutions.WithLabelValues(name, "error").Inc()
		return fmt.Sprintf("Error executing %s: unknown tool", name)
	}

	var args map[string]interface{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			metrics.ToolExecutions.WithLabelValues(name, "error").Inc()
			return fmt.Sprintf("Error executing %s: invalid arguments: %v", name, err)
		}
	}

	result, err := t.Execute(ctx, args)
	metrics.ToolLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ToolExecutions.WithLabelValues(name, "error").Inc()
		return fmt.Sprintf("Error executing %s: %v", name, err)
	}
	metrics.ToolExecutions.WithLabelValues(name, "success").Inc()

	switch v := result.(type) {
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("Error executing %s: unencodable result: %v", name, err)
		}
		return string(data)
	}
}

func (r *Runner) recordUsage(ctx context.Context, req RunRequest, modelInfo ai.ModelInfo, c *Completion, latency time.Duration) {
	totalCost, _ := c.Cost.Float64()
	now := time.Now()

	err := r.usageRecorder.Record(ctx, &aiusage.UsageLog{
		Timestamp:        now,
		EventID:          uuid.New().String(),
		UserID:           req.UserID,
		SessionID:        req.SessionID,
		AgentKind:        req.Label,
		Provider:         r.provider,
		ModelID:          modelInfo.Name,
		ModelFamily:      modelInfo.Family,
		PromptTokens:     uint32(c.Usage.PromptTokens),
		CompletionTokens: uint32(c.Usage.CompletionTokens),
		TotalTokens:      uint32(c.Usage.TotalTokens),
		TotalCostUSD:     totalCost,
		ToolCallsCount:   uint16(c.ToolCalls),
		LatencyMs:        uint32(latency.Milliseconds()),
		CreatedAt:        now,
	})
	if err != nil {
		r.log.Warnf("Usage recording failed for %s: %v", req.Label, err)
	}
}
