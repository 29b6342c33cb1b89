package analyzers

import (
	"fmt"
	"regexp"
	"strings"
)

// beatVocabulary maps emotional beat labels to indicator words
var beatVocabulary = []struct {
	beat  string
	words []string
}{
	{"tension", []string{"clenched", "tightened", "froze", "trembl", "dread", "heart pounded", "breath caught"}},
	{"grief", []string{"wept", "mourn", "loss", "ache", "hollow", "tears"}},
	{"joy", []string{"laughed", "grinned", "delight", "relief", "warmth", "lightness"}},
	{"anger", []string{"snapped", "slammed", "fury", "rage", "gritted", "snarled"}},
	{"fear", []string{"terror", "panic", "shiver", "cold sweat", "fled", "hid"}},
}

// DetectEmotionalBeats labels emotional beats present in the passage and
// flags long stretches with none.
func DetectEmotionalBeats(text string) []Finding {
	var findings []Finding
	lower := strings.ToLower(text)

	var present []string
	for _, entry := range beatVocabulary {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				present = append(present, entry.beat)
				break
			}
		}
	}

	if len(present) > 0 {
		findings = append(findings, Finding{
			Kind:        "emotional_beats",
			Severity:    SeverityPositive,
			Description: fmt.Sprintf("Emotional beats detected: %s", strings.Join(present, ", ")),
		})
	}

	words := len(regexp.MustCompile(`\S+`).FindAllString(text, -1))
	if words > 400 && len(present) == 0 {
		findings = append(findings, Finding{
			Kind:        "emotional_beats",
			Severity:    SeverityMedium,
			Description: "A long passage carries no detectable emotional beat; the scene may read flat",
			Suggestion:  "Anchor at least one moment in the viewpoint character's felt experience",
		})
	}

	if len(present) >= 4 {
		findings = append(findings, Finding{
			Kind:        "emotional_beats",
			Severity:    SeverityLow,
			Description: "Many distinct emotional registers compete within one passage",
			Suggestion:  "Let one dominant emotion carry the scene and stage the others as undercurrents",
		})
	}

	return findings
}
