package analyzers

import (
	"fmt"
	"regexp"
	"strings"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+[\s"')\]]*`)

// dialogueLine matches a line that opens with quoted speech
var dialogueLine = regexp.MustCompile(`(?m)^\s*["\x60']`)

// AnalyzePacing inspects sentence rhythm and dialogue density.
func AnalyzePacing(text string) []Finding {
	var findings []Finding

	sentences := splitSentences(text)
	if len(sentences) < 3 {
		return findings
	}

	var totalWords int
	var longRun, maxLongRun int
	var shortRun, maxShortRun int
	for _, s := range sentences {
		words := len(strings.Fields(s))
		totalWords += words

		if words > 25 {
			longRun++
			if longRun > maxLongRun {
				maxLongRun = longRun
			}
		} else {
			longRun = 0
		}

		if words <= 6 {
			shortRun++
			if shortRun > maxShortRun {
				maxShortRun = shortRun
			}
		} else {
			shortRun = 0
		}
	}
	avgWords := float64(totalWords) / float64(len(sentences))

	if maxLongRun >= 3 {
		findings = append(findings, Finding{
			Kind:        "pacing",
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Found a run of %d consecutive long sentences (over 25 words), which slows the read", maxLongRun),
			Suggestion:  "Break up long sentence runs with shorter beats to restore momentum",
		})
	}

	if maxShortRun >= 5 {
		findings = append(findings, Finding{
			Kind:        "pacing",
			Severity:    SeverityLow,
			Description: fmt.Sprintf("Found a run of %d consecutive very short sentences, which can feel choppy", maxShortRun),
			Suggestion:  "Vary sentence length so staccato passages read as deliberate, not accidental",
		})
	}

	if avgWords > 22 {
		findings = append(findings, Finding{
			Kind:        "pacing",
			Severity:    SeverityLow,
			Description: fmt.Sprintf("Average sentence length is %.0f words, on the slow side for most scenes", avgWords),
			Suggestion:  "Consider trimming subordinate clauses in action or dialogue-heavy passages",
		})
	}

	dialogueCount := len(dialogueLine.FindAllString(text, -1))
	lines := strings.Count(text, "\n") + 1
	if lines >= 10 {
		ratio := float64(dialogueCount) / float64(lines)
		if ratio > 0.8 {
			findings = append(findings, Finding{
				Kind:        "pacing",
				Severity:    SeverityLow,
				Description: "Passage is almost entirely dialogue with little grounding narration",
				Suggestion:  "Interleave action beats or interiority so the scene stays anchored",
			})
		}
	}

	if len(findings) == 0 {
		findings = append(findings, Finding{
			Kind:        "pacing",
			Severity:    SeverityPositive,
			Description: "Sentence rhythm is varied; no pacing problems detected",
		})
	}

	return findings
}

func splitSentences(text string) []string {
	raw := sentenceSplit.Split(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
