package agents

import "maxwell/internal/tools"

// agentSpec carries the static prompt and tool assignment for one agent kind
type agentSpec struct {
	systemPrompt string
	toolNames    []string
	temperature  float64
}

const structuredOutputDirective = `
Respond with a single JSON object:
{
  "recommendations": [{"kind": "...", "severity": "high|medium|low|positive", "text": "...", "suggestion": "...", "teaching_note": "..."}],
  "issues": [{"kind": "...", "severity": "high|medium|low", "description": "...", "location": "...", "suggestion": "..."}],
  "teaching_points": ["..."]
}
Use severity "positive" for genuine strengths worth keeping. Be specific; quote the text you are reacting to.`

var agentSpecs = map[AgentKind]agentSpec{
	AgentStyle: {
		systemPrompt: `You are a prose style specialist for fiction manuscripts. Examine sentence
rhythm, word choice, imagery, filtering, and overwriting. Praise what works.
Ground every observation in the passage itself.` + structuredOutputDirective,
		toolNames:   []string{tools.ToolAnalyzePacing},
		temperature: 0.4,
	},
	AgentContinuity: {
		systemPrompt: `You are a continuity specialist for fiction manuscripts. Check the passage
against established story facts: character traits, physical details, timeline,
world rules. Use the wiki lookup tool before flagging a contradiction so you
compare against the canon, not your assumption.` + structuredOutputDirective,
		toolNames:   []string{tools.ToolLookupEntity},
		temperature: 0.2,
	},
	AgentStructure: {
		systemPrompt: `You are a story structure specialist. Assess scene purpose, stakes,
causality, subplot threads, and where this passage sits in the larger arc.
Identify scenes that could be cut or merged.` + structuredOutputDirective,
		toolNames:   []string{tools.ToolDetectSubplots, tools.ToolDetectBeats},
		temperature: 0.4,
	},
	AgentVoice: {
		systemPrompt: `You are a narrative voice specialist. Evaluate point-of-view discipline,
character voice distinctiveness in dialogue, tonal consistency, and authorial
intrusion.` + structuredOutputDirective,
		toolNames:   []string{tools.ToolAnalyzePOV},
		temperature: 0.5,
	},
}

// focusAreas maps quick-check focus names to the agent that covers them
var focusAreas = map[string]AgentKind{
	"style":      AgentStyle,
	"prose":      AgentStyle,
	"continuity": AgentContinuity,
	"canon":      AgentContinuity,
	"structure":  AgentStructure,
	"plot":       AgentStructure,
	"voice":      AgentVoice,
	"pov":        AgentVoice,
}
