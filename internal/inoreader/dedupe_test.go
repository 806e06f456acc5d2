package inoreader

import "testing"

func TestDedupeKeepsFirstSeenOrder(t *testing.T) {
	a := []Item{{ID: "1", Title: "first"}, {ID: "2", Title: "second"}}
	b := []Item{{ID: "2", Title: "second-dup"}, {ID: "3", Title: "third"}, {ID: "1", Title: "first-dup"}}

	out := Dedupe(a, b)
	if len(out) != 3 {
		t.Fatalf("expected 3 unique items, got %d", len(out))
	}
	wantOrder := []string{"1", "2", "3"}
	for i, id := range wantOrder {
		if out[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, out[i].ID, id)
		}
	}
	// The first occurrence wins, not the duplicate.
	if out[1].Title != "second" {
		t.Errorf("duplicate replaced the original: %q", out[1].Title)
	}
}

func TestDedupeEmptyInput(t *testing.T) {
	if out := Dedupe(); out != nil {
		t.Fatalf("expected nil for no input, got %v", out)
	}
	if out := Dedupe([]Item{}); out != nil {
		t.Fatalf("expected nil for empty sequence, got %v", out)
	}
}

func TestDedupeKeepsItemsWithoutID(t *testing.T) {
	out := Dedupe([]Item{{Title: "a"}, {Title: "b"}})
	if len(out) != 2 {
		t.Fatalf("items without IDs must all survive, got %d", len(out))
	}
}
