package agents

import (
	"strings"
	"unicode/utf8"

	"maxwell/internal/metrics"
	"maxwell/pkg/logger"
)

// ConflictKind tags a detected disagreement between two agents
type ConflictKind string

const (
	ConflictCharacterVsPlot         ConflictKind = "character_vs_plot"
	ConflictStyleVsVoice            ConflictKind = "style_vs_voice"
	ConflictPacingVsStructure       ConflictKind = "pacing_vs_structure"
	ConflictConsistencyVsCreativity ConflictKind = "consistency_vs_creativity"
	ConflictDialogueVsProse         ConflictKind = "dialogue_vs_prose"
	ConflictNone                    ConflictKind = "none"
)

// ConflictSeverity grades how sharply two agents disagree
type ConflictSeverity string

const (
	ConflictMinor       ConflictSeverity = "minor"
	ConflictModerate    ConflictSeverity = "moderate"
	ConflictSignificant ConflictSeverity = "significant"
	ConflictCritical    ConflictSeverity = "critical"
)

const excerptLimit = 200

// Conflict is a detected disagreement between exactly two agents' feedback
type Conflict struct {
	Kind             ConflictKind     `json:"conflict_kind"`
	Severity         ConflictSeverity `json:"severity"`
	AgentA           AgentKind        `json:"agent_a"`
	AgentB           AgentKind        `json:"agent_b"`
	ExcerptA         string           `json:"excerpt_a"`
	ExcerptB         string           `json:"excerpt_b"`
	BridgeSuggestion string           `json:"bridge_suggestion"`
	AuthorQuestion   string           `json:"author_question"`
}

// conflictPattern flags a pair as conflicting when both keyword sets are
// found across the two agents' combined feedback. The check is symmetric:
// either set may appear in either agent's blob.
type conflictPattern struct {
	kind      ConflictKind
	keywordsA []string
	keywordsB []string
}

// conflictPatterns are checked in declaration order; the first match wins
// per agent pair.
var conflictPatterns = []conflictPattern{
	{
		kind:      ConflictCharacterVsPlot,
		keywordsA: []string{"out of character", "wouldn't do this", "unbelievable", "doesn't fit the character", "acts inconsistently"},
		keywordsB: []string{"plot requires", "dramatic conflict", "story needs", "plot demands", "necessary for the plot"},
	},
	{
		kind:      ConflictStyleVsVoice,
		keywordsA: []string{"overwritten", "simplify", "tighten", "trim", "cut back"},
		keywordsB: []string{"distinctive voice", "keep the voice", "character's voice", "voice shines", "part of the voice"},
	},
	{
		kind:      ConflictPacingVsStructure,
		keywordsA: []string{"too slow", "drags", "pick up the pace", "rushed", "loses momentum"},
		keywordsB: []string{"needs setup", "necessary buildup", "structural foundation", "load-bearing", "earns the payoff"},
	},
	{
		kind:      ConflictConsistencyVsCreativity,
		keywordsA: []string{"contradicts", "established", "continuity error", "breaks canon", "inconsistent with"},
		keywordsB: []string{"creative risk", "bold choice", "fresh take", "subvert", "reinvention"},
	},
	{
		kind:      ConflictDialogueVsProse,
		keywordsA: []string{"more dialogue", "let them speak", "dialogue would", "show through conversation"},
		keywordsB: []string{"more narration", "interiority", "more description", "prose would", "narrative summary"},
	},
}

// severityCascade orders tier checks; the first tier whose keyword appears
// in the combined blob wins.
var severityCascade = []struct {
	severity ConflictSeverity
	words    []string
}{
	{ConflictCritical, []string{"critical", "major", "fundamental", "breaks"}},
	{ConflictSignificant, []string{"significant", "important", "notable"}},
	{ConflictMinor, []string{"minor", "small", "slight"}},
}

// bridgeSuggestions are deterministic per-kind resolution suggestions; the
// first entry is always used so conflict output is reproducible.
var bridgeSuggestions = map[ConflictKind][]string{
	ConflictCharacterVsPlot: {
		"Find a motivation that makes the plot-required action feel in character, or let the character resist before complying.",
		"Seed an earlier scene that makes this behavior plausible.",
	},
	ConflictStyleVsVoice: {
		"Trim the prose everywhere except the phrases that carry the character's signature voice.",
		"Keep one distinctive flourish per paragraph and simplify the rest.",
	},
	ConflictPacingVsStructure: {
		"Keep the structural beat but compress it: deliver the setup inside an active scene instead of standalone buildup.",
		"Interleave the slow material with a faster subplot thread.",
	},
	ConflictConsistencyVsCreativity: {
		"Keep the bold choice but add a canon-consistent explanation for the departure.",
		"Retcon the earlier fact in revision if the new direction is stronger.",
	},
	ConflictDialogueVsProse: {
		"Split the difference: dramatize the emotional turn in dialogue and carry the connective tissue in narration.",
		"Convert the weakest narration into an exchange and keep the rest.",
	},
}

// authorQuestions pose the tradeoff back to the user, per conflict kind
var authorQuestions = map[ConflictKind]string{
	ConflictCharacterVsPlot:         "Which matters more in this scene: protecting how readers understand this character, or landing the plot turn as written?",
	ConflictStyleVsVoice:            "Is this passage's density a deliberate part of the narrator's voice, or prose you'd be happy to thin out?",
	ConflictPacingVsStructure:       "Does this section need to breathe for later payoffs, or would you rather trade setup for momentum?",
	ConflictConsistencyVsCreativity: "Do you want to stay inside the established canon here, or intentionally break it and revise earlier chapters?",
	ConflictDialogueVsProse:         "Do you hear this moment as a spoken exchange or as interior narration?",
}

// ConflictReasoner detects pairwise semantic conflicts between agents'
// feedback and scores aggregate story health
type ConflictReasoner struct {
	log *logger.Logger
}

// NewConflictReasoner creates a conflict reasoner
func NewConflictReasoner() *ConflictReasoner {
	return &ConflictReasoner{log: logger.Get().With("component", "conflicts")}
}

// FindConflicts checks every unordered pair of succeeded agents for
// keyword-pattern conflicts. Pairs are enumerated in agent declaration
// order so output is deterministic.
func (c *ConflictReasoner) FindConflicts(outcomes map[AgentKind]*AgentOutcome) []Conflict {
	var present []AgentKind
	blobs := make(map[AgentKind]string)
	for _, kind := range DeclarationOrder {
		outcome, ok := outcomes[kind]
		if !ok || outcome == nil || !outcome.Succeeded {
			continue
		}
		present = append(present, kind)
		blobs[kind] = feedbackBlob(outcome)
	}

	var conflicts []Conflict
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			a, b := present[i], present[j]
			combined := strings.ToLower(blobs[a] + " " + blobs[b])

			for _, pattern := range conflictPatterns {
				if !containsAny(combined, pattern.keywordsA) || !containsAny(combined, pattern.keywordsB) {
					continue
				}

				conflict := Conflict{
					Kind:             pattern.kind,
					Severity:         conflictSeverity(combined),
					AgentA:           a,
					AgentB:           b,
					ExcerptA:         truncateExcerpt(blobs[a]),
					ExcerptB:         truncateExcerpt(blobs[b]),
					BridgeSuggestion: bridgeSuggestions[pattern.kind][0],
					AuthorQuestion:   authorQuestions[pattern.kind],
				}
				conflicts = append(conflicts, conflict)
				metrics.ConflictsDetected.WithLabelValues(string(pattern.kind)).Inc()
				c.log.Debugf("Conflict %s between %s and %s (%s)", pattern.kind, a, b, conflict.Severity)

				// First matching pattern wins; one conflict per pair.
				break
			}
		}
	}

	return conflicts
}

func feedbackBlob(outcome *AgentOutcome) string {
	var sb strings.Builder
	for _, rec := range outcome.Recommendations {
		sb.WriteString(rec.Text)
		sb.WriteString(" ")
		if rec.Suggestion != "" {
			sb.WriteString(rec.Suggestion)
			sb.WriteString(" ")
		}
	}
	for _, issue := range outcome.Issues {
		sb.WriteString(issue.Description)
		sb.WriteString(" ")
	}
	return strings.TrimSpace(sb.String())
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func conflictSeverity(combined string) ConflictSeverity {
	for _, tier := range severityCascade {
		if containsAny(combined, tier.words) {
			return tier.severity
		}
	}
	return ConflictModerate
}

func truncateExcerpt(s string) string {
	if len(s) <= excerptLimit {
		return s
	}
	cut := excerptLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
