package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/shopspring/decimal"

	"maxwell/internal/adapters/ai"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// toneDirectives adjust the synthesized register per requested tone
var toneDirectives = map[Tone]string{
	ToneEncouraging: "Be warm and encouraging. Lead with what works before what needs work.",
	ToneDirect:      "Be direct and economical. Skip pleasantries, get to the substance.",
	ToneAnalytical:  "Be analytical. Explain the craft principles behind each point.",
	ToneGentle:      "Be gentle. Frame problems as opportunities and soften critical points.",
}

const synthesizerSystemPrompt = `You are Maxwell, a writing coach synthesizing feedback from several
specialist reviewers into one coherent response for an author. Weave the
findings into flowing prose, not a list dump. When reviewers disagree,
present the tradeoff honestly and pose the author question provided.
Never invent findings that are not in the input.`

// SynthesisResult carries the narrative plus accounting for the synthesis
// call only; upstream agent costs are already counted in MergedAnalysis.
type SynthesisResult struct {
	Narrative string
	Usage     Usage
	Cost      decimal.Decimal
}

// Synthesizer converts merged structured findings into one narrative
// response
type Synthesizer struct {
	runner Completer
	log    *logger.Logger
}

// NewSynthesizer creates a response synthesizer
func NewSynthesizer(runner Completer) *Synthesizer {
	return &Synthesizer{
		runner: runner,
		log:    logger.Get().With("component", "synthesizer"),
	}
}

// Synthesize builds the synthesis prompt and delegates prose generation.
// Every deduplicated recommendation and issue is included in the prompt:
// findings are never silently dropped.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	merged *MergedAnalysis,
	conflicts []Conflict,
	tone Tone,
	authorContext string,
) (*SynthesisResult, error) {
	if merged == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "nil merged analysis")
	}

	prompt := BuildSynthesisPrompt(merged, conflicts, tone, authorContext)

	completion, err := s.runner.Run(ctx, RunRequest{
		Label:       "synthesizer",
		System:      synthesizerSystemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		Temperature: 0.6,
	})
	if err != nil {
		return nil, errors.Wrap(err, "synthesis completion")
	}

	narrative := strings.TrimSpace(completion.Text)
	if narrative == "" {
		// The front must always return something.
		narrative = renderFallbackNarrative(merged)
	}

	s.log.Debugf("Synthesized %s narrative from %d recommendations, %d issues, %d conflicts",
		humanize.Bytes(uint64(len(narrative))), len(merged.Recommendations), len(merged.Issues), len(conflicts))

	return &SynthesisResult{
		Narrative: narrative,
		Usage:     completion.Usage,
		Cost:      completion.Cost,
	}, nil
}

// QuickSynthesis shapes a small set of findings into a short narrative for
// single-focus checks, skipping the merge and conflict pipeline entirely.
// It is deliberately LLM-free: output shaping only.
func (s *Synthesizer) QuickSynthesis(items []string, tone Tone) string {
	if len(items) == 0 {
		return "Nothing stood out in this check. The passage holds up."
	}

	count := english.Plural(len(items), "point", "")

	var sb strings.Builder
	switch tone {
	case ToneDirect:
		fmt.Fprintf(&sb, "Here's what I found — %s:\n", count)
	case ToneAnalytical:
		fmt.Fprintf(&sb, "A focused look turned up %s:\n", count)
	default:
		fmt.Fprintf(&sb, "I took a focused look and found %s worth your attention:\n", count)
	}

	for _, item := range items {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	return sb.String()
}

// BuildSynthesisPrompt assembles the synthesis input. Exported so tests can
// verify every finding is traceable into it.
func BuildSynthesisPrompt(merged *MergedAnalysis, conflicts []Conflict, tone Tone, authorContext string) string {
	var sb strings.Builder

	directive, ok := toneDirectives[tone]
	if !ok {
		directive = toneDirectives[ToneEncouraging]
	}
	sb.WriteString("Tone: ")
	sb.WriteString(directive)
	sb.WriteString("\n\n")

	if authorContext != "" {
		sb.WriteString("About this author:\n")
		sb.WriteString(authorContext)
		sb.WriteString("\n\n")
	}

	if len(merged.Recommendations) > 0 {
		sb.WriteString("Recommendations from specialists:\n")
		for _, rec := range merged.Recommendations {
			fmt.Fprintf(&sb, "- [%s/%s] %s", rec.Agent, rec.Severity, rec.Text)
			if rec.Suggestion != "" {
				fmt.Fprintf(&sb, " (suggestion: %s)", rec.Suggestion)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(merged.Issues) > 0 {
		sb.WriteString("Issues found:\n")
		for _, issue := range merged.Issues {
			fmt.Fprintf(&sb, "- [%s/%s] %s", issue.Agent, issue.Severity, issue.Description)
			if issue.Location != "" {
				fmt.Fprintf(&sb, " (at: %s)", issue.Location)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(conflicts) > 0 {
		sb.WriteString("Specialist disagreements to present honestly:\n")
		for _, c := range conflicts {
			fmt.Fprintf(&sb, "- %s (%s vs %s, %s): bridge: %s; ask the author: %s\n",
				c.Kind, c.AgentA, c.AgentB, c.Severity, c.BridgeSuggestion, c.AuthorQuestion)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Write the coaching response now.")
	return sb.String()
}

// renderFallbackNarrative produces a plain rendering when the model
// returns nothing usable
func renderFallbackNarrative(merged *MergedAnalysis) string {
	var items []string
	for _, rec := range merged.Recommendations {
		items = append(items, rec.Text)
	}
	for _, issue := range merged.Issues {
		items = append(items, issue.Description)
	}
	if len(items) == 0 {
		return "I reviewed the passage but have no findings to report this time."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here is the specialists' feedback — %s:\n", english.Plural(len(items), "finding", ""))
	for _, item := range items {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	return sb.String()
}
