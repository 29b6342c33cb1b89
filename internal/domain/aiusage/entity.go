package aiusage

import "time"

// UsageLog represents a single AI model usage event
type UsageLog struct {
	Timestamp time.Time `ch:"timestamp"`
	EventID   string    `ch:"event_id"`

	// User context
	UserID    string `ch:"user_id"`
	SessionID string `ch:"session_id"`

	// Agent context
	AgentKind string `ch:"agent_kind"` // style, continuity, structure, voice, synthesizer

	// Model details
	Provider    string `ch:"provider"`     // claude, openai
	ModelID     string `ch:"model_id"`     // claude-3-5-sonnet-latest, gpt-4o, etc.
	ModelFamily string `ch:"model_family"` // claude-3-5, gpt-4o, etc.

	// Token usage
	PromptTokens     uint32 `ch:"prompt_tokens"`
	CompletionTokens uint32 `ch:"completion_tokens"`
	TotalTokens      uint32 `ch:"total_tokens"`

	// Cost
	InputCostUSD  float64 `ch:"input_cost_usd"`
	OutputCostUSD float64 `ch:"output_cost_usd"`
	TotalCostUSD  float64 `ch:"total_cost_usd"`

	// Request metadata
	ToolCallsCount uint16 `ch:"tool_calls_count"`

	// Performance
	LatencyMs uint32 `ch:"latency_ms"`

	CreatedAt time.Time `ch:"created_at"`
}
