package agents

import (
	"strings"
	"testing"
)

func block(weight float64, text string) ContextBlock {
	return ContextBlock{Weight: weight, Render: func() string { return text }}
}

func TestAssembleContext_WeightOrder(t *testing.T) {
	blocks := []ContextBlock{
		block(0.5, "lower"),
		block(1.0, "higher"),
		block(0, "excluded"),
		block(-1, "also excluded"),
	}

	got := AssembleContext(blocks, 1000)
	want := "higher\n\nlower"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Contains(got, "excluded") {
		t.Error("non-positive weight block leaked into output")
	}
}

func TestAssembleContext_StableForEqualWeights(t *testing.T) {
	blocks := []ContextBlock{
		block(1.0, "first"),
		block(1.0, "second"),
		block(1.0, "third"),
	}

	got := AssembleContext(blocks, 1000)
	want := "first\n\nsecond\n\nthird"
	if got != want {
		t.Errorf("equal-weight blocks reordered: got %q", got)
	}
}

func TestAssembleContext_TruncatesOversizeBlock(t *testing.T) {
	big := strings.Repeat("x", 2000)
	// 200 tokens -> 800 char budget, well above the tail-room threshold
	got := AssembleContext([]ContextBlock{block(1.0, big)}, 200)

	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatalf("expected truncation marker suffix, got tail %q", got[len(got)-30:])
	}
	if len(got) > 800 {
		t.Errorf("truncated output exceeds budget: %d chars", len(got))
	}
	if len(got) < 500 {
		t.Errorf("truncated output suspiciously short: %d chars", len(got))
	}
}

func TestAssembleContext_SkipsTinyTail(t *testing.T) {
	first := strings.Repeat("a", 700)
	second := strings.Repeat("b", 600)

	// Budget 800 chars: first fits, 100 left is below tail room so the
	// second block is dropped whole.
	got := AssembleContext([]ContextBlock{block(2.0, first), block(1.0, second)}, 200)

	if got != first {
		t.Errorf("expected only the first block, got %d chars", len(got))
	}
	if strings.Contains(got, truncationMarker) {
		t.Error("marker present though nothing was partially included")
	}
}

func TestAssembleContext_Empty(t *testing.T) {
	if got := AssembleContext(nil, 1000); got != "" {
		t.Errorf("nil blocks: got %q", got)
	}
	if got := AssembleContext([]ContextBlock{block(1, "x")}, 0); got != "" {
		t.Errorf("zero budget: got %q", got)
	}
}

func TestTurnsToContext_UniformWeights(t *testing.T) {
	blocks := TurnsToContext([]string{"user: hi", "assistant: hello"})
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.Weight != 1.0 {
			t.Errorf("block %d weight = %v, want 1.0", i, b.Weight)
		}
	}
	if blocks[1].Render() != "assistant: hello" {
		t.Errorf("render mismatch: %q", blocks[1].Render())
	}
}
