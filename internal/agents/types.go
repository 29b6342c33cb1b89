package agents

import (
	"github.com/shopspring/decimal"

	"maxwell/internal/domain/personalization"
)

// AgentKind identifies one specialized analysis capability
type AgentKind string

const (
	AgentStyle      AgentKind = "style"
	AgentContinuity AgentKind = "continuity"
	AgentStructure  AgentKind = "structure"
	AgentVoice      AgentKind = "voice"
)

// DeclarationOrder fixes the canonical agent ordering used for merge and
// conflict-pair enumeration. Map iteration order is never used for
// anything observable.
var DeclarationOrder = []AgentKind{AgentStyle, AgentContinuity, AgentStructure, AgentVoice}

// IsValid reports whether the kind is a known agent
func (k AgentKind) IsValid() bool {
	for _, known := range DeclarationOrder {
		if k == known {
			return true
		}
	}
	return false
}

func (k AgentKind) String() string {
	return string(k)
}

// Severity grades a finding
type Severity string

const (
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityPositive Severity = "positive"
)

// Recommendation is one actionable suggestion produced by an agent
type Recommendation struct {
	Agent        AgentKind `json:"agent"`
	Kind         string    `json:"kind"`
	Severity     Severity  `json:"severity"`
	Text         string    `json:"text"`
	Suggestion   string    `json:"suggestion,omitempty"`
	TeachingNote string    `json:"teaching_note,omitempty"`
}

// Issue is a problem an agent found in the text
type Issue struct {
	Agent       AgentKind `json:"agent"`
	Kind        string    `json:"kind"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Suggestion  string    `json:"suggestion,omitempty"`
}

// Usage tracks token consumption for one or more LLM calls
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage into this one
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// AgentOutcome is the result of one specialized agent's analysis. Created
// once per fan-out, immutable after creation, discarded after merge.
type AgentOutcome struct {
	Kind            AgentKind        `json:"agent_kind"`
	Succeeded       bool             `json:"succeeded"`
	Recommendations []Recommendation `json:"recommendations"`
	Issues          []Issue          `json:"issues"`
	TeachingPoints  []string         `json:"teaching_points,omitempty"`
	Usage           Usage            `json:"usage"`
	Cost            decimal.Decimal  `json:"cost"`
	LatencyMs       int64            `json:"latency_ms"`
}

// MergedAnalysis is the orchestrator's combined view across all agent
// outcomes for one request
type MergedAnalysis struct {
	Success         bool                        `json:"success"`
	PerAgent        map[AgentKind]*AgentOutcome `json:"per_agent"`
	Recommendations []Recommendation            `json:"recommendations"`
	Issues          []Issue                     `json:"issues"`
	TotalCost       decimal.Decimal             `json:"total_cost"`
	TotalTokens     int                         `json:"total_tokens"`
	TotalLatencyMs  int64                       `json:"total_latency_ms"`
	AuthorInsights  *personalization.Insights   `json:"author_insights,omitempty"`
}

// SucceededKinds returns the agents that completed, in declaration order
func (m *MergedAnalysis) SucceededKinds() []AgentKind {
	var kinds []AgentKind
	for _, kind := range DeclarationOrder {
		if outcome, ok := m.PerAgent[kind]; ok && outcome.Succeeded {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// Intent classifies what the user is asking for
type Intent string

const (
	IntentAnalysis    Intent = "analysis"
	IntentConsistency Intent = "consistency"
	IntentQuality     Intent = "quality"
	IntentSpecific    Intent = "specific"
	IntentBrainstorm  Intent = "brainstorm"
	IntentExplanation Intent = "explanation"
)

// RouteDecision is the router's answer: which agents, why
type RouteDecision struct {
	Agents    []AgentKind `json:"agents"`
	Intent    Intent      `json:"intent"`
	Reasoning string      `json:"reasoning"`
}

// Tone adjusts the synthesized narrative register
type Tone string

const (
	ToneEncouraging Tone = "encouraging"
	ToneDirect      Tone = "direct"
	ToneAnalytical  Tone = "analytical"
	ToneGentle      Tone = "gentle"
)
