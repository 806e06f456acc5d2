package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"intelbrief/internal/inoreader"
)

// scriptedLabeler answers from a map keyed by item title.
type scriptedLabeler struct {
	answers map[string]string
	err     error
	calls   int
}

func (l *scriptedLabeler) Classify(_ context.Context, _ []string, title, _ string) (string, error) {
	l.calls++
	if l.err != nil {
		return "", l.err
	}
	if answer, ok := l.answers[title]; ok {
		return answer, nil
	}
	return "IRRELEVANT", nil
}

func item(title, summary string) inoreader.Item {
	return inoreader.Item{ID: "id-" + title, Title: title, Summary: summary}
}

func TestFallbackClassificationIsDeterministic(t *testing.T) {
	items := []inoreader.Item{
		item("a", "China and Russia hold joint naval drills"),
		item("b", "New ransomware strain hits hospitals"),
		item("c", "Quantum computing breakthrough announced"),
		item("d", "Celebrity gossip and recipes"),
	}
	engine := NewEngine(nil)

	first := engine.ClassifyAll(context.Background(), items)
	second := engine.ClassifyAll(context.Background(), items)
	for i := range first {
		if first[i].Theme != second[i].Theme || first[i].Dropped != second[i].Dropped {
			t.Errorf("item %d classified differently across runs", i)
		}
	}

	if first[0].Theme != ThemeGeopolitical {
		t.Errorf("item a: got %q", first[0].Theme)
	}
	if first[1].Theme != ThemeCyber {
		t.Errorf("item b: got %q", first[1].Theme)
	}
	if first[2].Theme != ThemeEmergingTech {
		t.Errorf("item c: got %q", first[2].Theme)
	}
	if !first[3].Dropped {
		t.Error("item d should have been dropped")
	}
}

func TestFallbackFirstTableEntryWins(t *testing.T) {
	// "china" (Geopolitical) and "cyber" (Cyber) both match; table order
	// breaks the tie.
	engine := NewEngine(nil)
	results := engine.ClassifyAll(context.Background(), []inoreader.Item{
		item("tie", "China accused of cyber operation"),
	})
	if results[0].Theme != ThemeGeopolitical {
		t.Fatalf("got %q, want table-order winner %q", results[0].Theme, ThemeGeopolitical)
	}
}

func TestIrrelevantLabelsDropItems(t *testing.T) {
	labeler := &scriptedLabeler{answers: map[string]string{
		"keep1": ThemeCyber,
		"keep2": ThemeMilitary,
		"keep3": "Geopolitical Tensions",
	}}
	items := []inoreader.Item{
		item("keep1", ""), item("drop1", ""), item("keep2", ""),
		item("drop2", ""), item("keep3", ""),
	}

	results := NewEngine(labeler).ClassifyAll(context.Background(), items)
	kept := 0
	for _, res := range results {
		if !res.Dropped {
			kept++
		}
	}
	if kept != 3 {
		t.Fatalf("expected 3 kept of 5, got %d", kept)
	}
	if len(results) != len(items) {
		t.Fatalf("every item needs a result, got %d of %d", len(results), len(items))
	}
}

func TestSynonymsCollapseToCanonicalThemes(t *testing.T) {
	labeler := &scriptedLabeler{answers: map[string]string{
		"a": "geopolitics",
		"b": "Cyber",
		"c": "AI",
		"d": "future",
	}}
	results := NewEngine(labeler).ClassifyAll(context.Background(), []inoreader.Item{
		item("a", ""), item("b", ""), item("c", ""), item("d", ""),
	})

	want := []string{ThemeGeopolitical, ThemeCyber, ThemeEmergingTech, ThemeForesight}
	for i, theme := range want {
		if results[i].Theme != theme {
			t.Errorf("item %d: got %q, want %q", i, results[i].Theme, theme)
		}
	}
}

func TestNovelThemePassThroughAndCap(t *testing.T) {
	answers := make(map[string]string)
	var items []inoreader.Item
	for i := 0; i < DefaultMaxNovelThemes+3; i++ {
		title := fmt.Sprintf("novel-%d", i)
		answers[title] = fmt.Sprintf("Invented Theme %d", i)
		items = append(items, item(title, ""))
	}

	results := NewEngine(&scriptedLabeler{answers: answers}).ClassifyAll(context.Background(), items)
	novel := make(map[string]bool)
	dropped := 0
	for _, res := range results {
		if res.Dropped {
			dropped++
			continue
		}
		novel[res.Theme] = true
	}
	if len(novel) != DefaultMaxNovelThemes {
		t.Errorf("expected %d distinct novel themes, got %d", DefaultMaxNovelThemes, len(novel))
	}
	if dropped != 3 {
		t.Errorf("expected 3 over-cap drops, got %d", dropped)
	}
}

func TestLabelerFailureDropsItem(t *testing.T) {
	labeler := &scriptedLabeler{err: errors.New("model unavailable")}
	results := NewEngine(labeler).ClassifyAll(context.Background(), []inoreader.Item{
		item("a", "NATO exercise in the Baltic"),
		item("b", "nothing relevant here"),
	})
	// A failed call drops the single affected item; it is neither retried
	// nor rerouted to the keyword table.
	for i, res := range results {
		if !res.Dropped {
			t.Errorf("item %d survived a failed classification call: %+v", i, res)
		}
	}
	if labeler.calls != len(results) {
		t.Errorf("each item gets its own call: %d calls for %d items", labeler.calls, len(results))
	}
}

type zeroBudget struct{}

func (zeroBudget) Allow(string) bool { return false }

func TestExhaustedBudgetSkipsAI(t *testing.T) {
	labeler := &scriptedLabeler{answers: map[string]string{"a": ThemeCyber}}
	engine := NewEngine(labeler, WithBudget(zeroBudget{}))
	results := engine.ClassifyAll(context.Background(), []inoreader.Item{
		item("a", "malware campaign detected"),
	})
	if labeler.calls != 0 {
		t.Fatalf("AI called %d times despite exhausted budget", labeler.calls)
	}
	if results[0].Theme != ThemeCyber {
		t.Fatalf("fallback failed: %+v", results[0])
	}
}

func TestBucketsOfOrdering(t *testing.T) {
	results := []Result{
		{Item: item("n1", ""), Theme: "Novel B"},
		{Item: item("a", ""), Theme: ThemeForesight},
		{Item: item("b", ""), Theme: ThemeGeopolitical},
		{Item: item("n2", ""), Theme: "Novel A"},
		{Item: item("c", ""), Theme: ThemeGeopolitical},
		{Item: item("d", ""), Dropped: true},
	}

	buckets := BucketsOf(results)
	order := make([]string, len(buckets))
	for i, b := range buckets {
		order[i] = b.Theme
	}

	want := []string{ThemeGeopolitical, ThemeForesight, "Novel B", "Novel A"}
	if len(order) != len(want) {
		t.Fatalf("bucket order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("bucket order %v, want %v", order, want)
		}
	}
	if len(buckets[0].Items) != 2 {
		t.Errorf("geopolitical bucket should hold 2 items, has %d", len(buckets[0].Items))
	}
}
