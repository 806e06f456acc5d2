package gemini

import (
	"strings"
	"testing"
)

func TestTruncateShortTextUnchanged(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncatePrefersSentenceEnd(t *testing.T) {
	text := "This first sentence runs a bit long. Second sentence keeps going for a while after it."
	got := Truncate(text, 40)
	if got != "This first sentence runs a bit long." {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateHardCutWithoutSentence(t *testing.T) {
	text := strings.Repeat("x", 500)
	got := Truncate(text, 100)
	if len([]rune(got)) != 100 {
		t.Fatalf("got %d runes", len([]rune(got)))
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	text := strings.Repeat("æ", 200)
	got := Truncate(text, 50)
	if n := len([]rune(got)); n != 50 {
		t.Fatalf("got %d runes, want 50", n)
	}
}
