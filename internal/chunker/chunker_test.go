package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	chunks := Split("", 100)
	if len(chunks) != 1 || chunks[0] != "" {
		t.Fatalf("expected one empty chunk, got %q", chunks)
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	text := "short message"
	chunks := Split(text, 100)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected %q unchanged, got %q", text, chunks)
	}
}

func TestSplitExactLimitSingleChunk(t *testing.T) {
	text := strings.Repeat("a", 50)
	chunks := Split(text, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk at exact limit, got %d", len(chunks))
	}
}

func TestSplitOverLimitSplits(t *testing.T) {
	text := strings.Repeat("a", 51)
	chunks := Split(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
}

func TestSplitRespectsLimit(t *testing.T) {
	text := strings.Repeat("word and more text. ", 100)
	for _, limit := range []int{40, 100, 400} {
		for i, chunk := range Split(text, limit) {
			if n := len([]rune(chunk)); n > limit {
				t.Errorf("limit %d: chunk %d has %d runes", limit, i, n)
			}
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	text := "First sentence ends here. Second sentence is fairly long and continues."
	chunks := Split(text, 40)
	if chunks[0] != "First sentence ends here." {
		t.Fatalf("expected break after first sentence, got %q", chunks[0])
	}
}

func TestSplitPrefersWordBoundary(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	for _, chunk := range Split(text, 20) {
		if strings.HasPrefix(chunk, " ") || strings.HasSuffix(chunk, " ") {
			t.Errorf("chunk not trimmed: %q", chunk)
		}
	}
	// No word in the input is longer than the limit, so none may be cut.
	words := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		words[w] = true
	}
	for _, chunk := range Split(text, 20) {
		for _, w := range strings.Fields(chunk) {
			if !words[w] {
				t.Errorf("word %q was cut mid-way", w)
			}
		}
	}
}

func TestSplitLongWordHardCut(t *testing.T) {
	text := strings.Repeat("x", 120)
	chunks := Split(text, 50)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 120 runes at limit 50, got %d", len(chunks))
	}
}

func TestSplitRoundTripPreservesWords(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump!"
	joined := strings.Join(Split(text, 30), " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(text), " ") {
		t.Fatalf("words lost or reordered:\n got %q\nwant %q", joined, text)
	}
}

func TestSplitMultibyteRunes(t *testing.T) {
	text := strings.Repeat("ø", 80)
	chunks := Split(text, 50)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if n := len([]rune(chunks[0])); n != 50 {
		t.Fatalf("expected 50 runes in first chunk, got %d", n)
	}
}
