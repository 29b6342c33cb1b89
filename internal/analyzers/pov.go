package analyzers

import (
	"fmt"
	"regexp"
)

var (
	firstPerson  = regexp.MustCompile(`(?i)\b(I|me|my|mine|we|us|our)\b`)
	secondPerson = regexp.MustCompile(`(?i)\byou(r|rs)?\b`)
	thirdPerson  = regexp.MustCompile(`(?i)\b(he|she|his|her|hers|him|they|them|their)\b`)

	// filterVerbs are perception filters that distance the reader in deep POV
	filterVerbs = regexp.MustCompile(`(?i)\b(saw|heard|felt|noticed|realized|watched|wondered|thought)\b`)
)

// AnalyzePOV checks for point-of-view drift and filtering.
func AnalyzePOV(text string) []Finding {
	var findings []Finding

	first := len(firstPerson.FindAllString(text, -1))
	second := len(secondPerson.FindAllString(text, -1))
	third := len(thirdPerson.FindAllString(text, -1))

	total := first + second + third
	if total == 0 {
		return findings
	}

	// Mixed-person narration: two persons each carrying a meaningful share
	dominant, secondary := first, third
	if third > first {
		dominant, secondary = third, first
	}
	if secondary > 0 && float64(secondary)/float64(dominant+secondary) > 0.25 && dominant+secondary > 10 {
		findings = append(findings, Finding{
			Kind:        "pov",
			Severity:    SeverityHigh,
			Description: "Narration mixes first-person and third-person pronouns in significant proportion, suggesting POV drift",
			Suggestion:  "Pick one narrative person for the scene and recast the stray passages",
		})
	}

	if second > 3 && second*10 > total {
		findings = append(findings, Finding{
			Kind:        "pov",
			Severity:    SeverityMedium,
			Description: "Repeated direct address of the reader (second person) inside otherwise conventional narration",
			Suggestion:  "Remove reader-directed asides unless the book's voice is deliberately second person",
		})
	}

	filters := len(filterVerbs.FindAllString(text, -1))
	words := len(regexp.MustCompile(`\S+`).FindAllString(text, -1))
	if words > 100 && float64(filters)/float64(words)*1000 > 12 {
		findings = append(findings, Finding{
			Kind:        "pov",
			Severity:    SeverityLow,
			Description: fmt.Sprintf("High density of perception filter verbs (%d occurrences) distances the reader from the viewpoint character", filters),
			Suggestion:  "Cut filters like 'she saw' or 'he felt' and present the perception directly",
		})
	}

	return findings
}
