package analyzers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// properNoun matches capitalized words not at sentence start, a cheap
// stand-in for named characters and places.
var properNoun = regexp.MustCompile(`([a-z,;:]\s+)([A-Z][a-z]{2,})`)

// DetectSubplots estimates named-thread distribution: names that appear
// early then vanish, or appear only once, hint at dangling subplots.
func DetectSubplots(text string) []Finding {
	var findings []Finding

	matches := properNoun.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return findings
	}

	counts := make(map[string]int)
	lastSeen := make(map[string]int)
	for i, m := range matches {
		name := m[2]
		counts[name]++
		lastSeen[name] = i
	}

	var names []string
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var singletons []string
	var dropped []string
	for _, name := range names {
		if counts[name] == 1 {
			singletons = append(singletons, name)
			continue
		}
		// Named more than twice but absent from the final third
		if counts[name] >= 3 && lastSeen[name] < len(matches)*2/3 {
			dropped = append(dropped, name)
		}
	}

	if len(dropped) > 0 {
		findings = append(findings, Finding{
			Kind:        "subplot",
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("Recurring names disappear before the passage ends: %s", strings.Join(dropped, ", ")),
			Suggestion:  "Check whether these threads are resolved or deliberately deferred",
		})
	}

	if len(singletons) >= 4 {
		findings = append(findings, Finding{
			Kind:        "subplot",
			Severity:    SeverityLow,
			Description: fmt.Sprintf("%d names appear exactly once, which can scatter reader attention", len(singletons)),
			Suggestion:  "Cut or consolidate walk-on names unless they pay off later",
		})
	}

	return findings
}
