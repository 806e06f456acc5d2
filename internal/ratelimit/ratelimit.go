// Package ratelimit enforces the daily AI request budget shared by
// classification, summarization, and synthesis.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu       sync.Mutex
	maxTotal int
	counts   map[string]int
	total    int
	day      time.Time
}

// NewLimiter creates a limiter allowing maxTotal requests per calendar day.
// A non-positive maxTotal disables the limit.
func NewLimiter(maxTotal int) *Limiter {
	return &Limiter{
		maxTotal: maxTotal,
		counts:   make(map[string]int),
		day:      startOfDay(time.Now()),
	}
}

// Allow reports whether another request of the given kind fits the budget,
// counting it when it does.
func (l *Limiter) Allow(kind string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetIfNewDay()
	if l.maxTotal > 0 && l.total >= l.maxTotal {
		return false
	}
	l.counts[kind]++
	l.total++
	return true
}

// Remaining returns how many requests are left today. Unlimited budgets
// report -1.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetIfNewDay()
	if l.maxTotal <= 0 {
		return -1
	}
	if l.total >= l.maxTotal {
		return 0
	}
	return l.maxTotal - l.total
}

// GetStats returns today's usage broken down by request kind.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetIfNewDay()
	byKind := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		byKind[k] = v
	}
	return map[string]interface{}{
		"max_total": l.maxTotal,
		"total":     l.total,
		"by_kind":   byKind,
		"day":       l.day.Format("2006-01-02"),
	}
}

func (l *Limiter) resetIfNewDay() {
	today := startOfDay(time.Now())
	if today.After(l.day) {
		l.counts = make(map[string]int)
		l.total = 0
		l.day = today
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
