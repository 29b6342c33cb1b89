package agents

import (
	"strings"

	"maxwell/internal/domain/wiki"
)

// truncationMarker is appended when a block had to be cut to fit the budget.
const truncationMarker = "[Context truncated]"

// tailRoom is the minimum leftover budget worth filling with a partial block.
const tailRoom = 500

// ContextBlock is one weighted source of background facts. Render is called
// lazily so callers can defer expensive formatting until the block is known
// to fit.
type ContextBlock struct {
	Weight float64
	Render func() string
}

// AssembleContext merges weighted context blocks into a single bounded
// prompt string. Blocks with weight <= 0 are excluded; the rest are taken
// in weight order (stable for ties) until the character budget runs out.
// maxTokens is converted with the 4-chars-per-token approximation.
func AssembleContext(blocks []ContextBlock, maxTokens int) string {
	if maxTokens <= 0 || len(blocks) == 0 {
		return ""
	}

	// Stable sort by weight descending, dropping non-positive weights.
	kept := make([]ContextBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Weight > 0 && b.Render != nil {
			kept = append(kept, b)
		}
	}
	for i := 1; i < len(kept); i++ {
		for j := i; j > 0 && kept[j].Weight > kept[j-1].Weight; j-- {
			kept[j], kept[j-1] = kept[j-1], kept[j]
		}
	}

	maxChars := maxTokens * 4
	var pieces []string
	running := 0

	for _, b := range kept {
		text := b.Render()
		if text == "" {
			continue
		}

		if running+len(text) < maxChars {
			pieces = append(pieces, text)
			running += len(text)
			continue
		}

		// Block would overflow. Fill the tail if there is enough room
		// left to be useful, then stop either way.
		remaining := maxChars - running
		if remaining > tailRoom {
			cut := remaining - len(truncationMarker) - 1
			if cut > 0 && cut < len(text) {
				pieces = append(pieces, text[:cut]+"\n"+truncationMarker)
			}
		}
		break
	}

	return strings.Join(pieces, "\n\n")
}

// BlocksToContext adapts wiki blocks to context blocks
func BlocksToContext(blocks []*wiki.Block) []ContextBlock {
	out := make([]ContextBlock, 0, len(blocks))
	for _, b := range blocks {
		b := b
		out = append(out, ContextBlock{
			Weight: b.Weight,
			Render: func() string {
				if b.Title == "" {
					return b.Content
				}
				return b.Title + "\n" + b.Content
			},
		})
	}
	return out
}

// TurnsToContext adapts dialogue history to uniformly-weighted context
// blocks so conversational turns pass through the same truncation path as
// wiki facts.
func TurnsToContext(turns []string) []ContextBlock {
	out := make([]ContextBlock, 0, len(turns))
	for _, t := range turns {
		t := t
		out = append(out, ContextBlock{
			Weight: 1.0,
			Render: func() string { return t },
		})
	}
	return out
}
