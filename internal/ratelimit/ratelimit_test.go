package ratelimit

import (
	"sync"
	"testing"
)

func TestAllowStopsAtBudget(t *testing.T) {
	l := NewLimiter(3)
	for i := 0; i < 3; i++ {
		if !l.Allow("classify") {
			t.Fatalf("request %d rejected within budget", i)
		}
	}
	if l.Allow("summarize") {
		t.Fatal("request allowed over budget")
	}
	if l.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", l.Remaining())
	}
}

func TestUnlimitedBudget(t *testing.T) {
	l := NewLimiter(0)
	for i := 0; i < 1000; i++ {
		if !l.Allow("classify") {
			t.Fatalf("unlimited limiter rejected request %d", i)
		}
	}
	if l.Remaining() != -1 {
		t.Fatalf("Remaining = %d, want -1 for unlimited", l.Remaining())
	}
}

func TestAllowIsSafeConcurrently(t *testing.T) {
	l := NewLimiter(100)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("classify") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Fatalf("allowed %d of 200 with budget 100", allowed)
	}
}

func TestGetStatsBreaksDownByKind(t *testing.T) {
	l := NewLimiter(10)
	l.Allow("classify")
	l.Allow("classify")
	l.Allow("synthesize")

	stats := l.GetStats()
	byKind, ok := stats["by_kind"].(map[string]int)
	if !ok {
		t.Fatalf("by_kind has wrong type: %T", stats["by_kind"])
	}
	if byKind["classify"] != 2 || byKind["synthesize"] != 1 {
		t.Fatalf("by_kind = %v", byKind)
	}
	if stats["total"] != 3 {
		t.Fatalf("total = %v", stats["total"])
	}
}
