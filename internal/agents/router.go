package agents

import (
	"fmt"
	"strings"

	"maxwell/pkg/logger"
)

// triggerVocabulary gates the expensive pipeline: a message must contain at
// least one of these before any agent runs. Deliberately cheap and
// false-positive tolerant.
var triggerVocabulary = []string{
	"analyze", "analysis", "review", "feedback", "critique", "assess",
	"consistent", "consistency", "check", "look at", "thoughts on",
	"how is", "what do you think", "improve", "better", "stronger",
	"problem", "issue", "weak", "working",
}

// intentRule maps keyword hits to an intent and its default agent subset.
// Rules are checked in order; the first match wins.
type intentRule struct {
	intent   Intent
	keywords []string
	agents   []AgentKind
}

var intentRules = []intentRule{
	{
		intent:   IntentConsistency,
		keywords: []string{"consistent", "consistency", "continuity", "contradict", "canon", "timeline", "established"},
		agents:   []AgentKind{AgentContinuity},
	},
	{
		intent:   IntentQuality,
		keywords: []string{"prose", "writing quality", "sentence", "word choice", "style", "voice", "sound"},
		agents:   []AgentKind{AgentStyle, AgentVoice},
	},
	{
		intent:   IntentSpecific,
		keywords: []string{"this paragraph", "this sentence", "this line", "this word", "this passage", "specifically"},
		agents:   []AgentKind{AgentStyle, AgentStructure},
	},
	{
		intent:   IntentBrainstorm,
		keywords: []string{"brainstorm", "ideas", "what if", "could i", "alternative", "options"},
		agents:   []AgentKind{AgentStructure, AgentVoice},
	},
	{
		intent:   IntentExplanation,
		keywords: []string{"why", "explain", "what does", "how does", "teach me", "what is"},
		agents:   []AgentKind{AgentStyle, AgentStructure},
	},
	{
		intent:   IntentAnalysis,
		keywords: []string{"analyze", "analysis", "full review", "everything", "overall"},
		agents:   DeclarationOrder,
	},
}

// Router classifies free-form queries into an agent subset and intent
type Router struct {
	log *logger.Logger
}

// NewRouter creates a query router
func NewRouter() *Router {
	return &Router{log: logger.Get().With("component", "router")}
}

// ShouldInvokeAgents reports whether the message warrants the full
// pipeline. Plain conversation stays on the cheap path.
func (r *Router) ShouldInvokeAgents(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range triggerVocabulary {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// Route classifies the query into an intent and agent subset. Unmatched
// queries degrade to the full default set with an analysis intent; the
// reasoning string is always populated.
func (r *Router) Route(query string, selectedSample string) RouteDecision {
	lower := strings.ToLower(query + " " + selectedSample)

	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				decision := RouteDecision{
					Agents:    append([]AgentKind(nil), rule.agents...),
					Intent:    rule.intent,
					Reasoning: fmt.Sprintf("Matched %q, classified as %s", kw, rule.intent),
				}
				r.log.Debugf("Routed to %v: %s", decision.Agents, decision.Reasoning)
				return decision
			}
		}
	}

	// Default path still explains itself.
	decision := RouteDecision{
		Agents:    append([]AgentKind(nil), DeclarationOrder...),
		Intent:    IntentAnalysis,
		Reasoning: "No intent keywords matched; defaulting to full analysis with all agents",
	}
	r.log.Debugf("Routed to default: %s", decision.Reasoning)
	return decision
}
