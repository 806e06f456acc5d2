package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	PagesFetched       int64
	ItemsFetched       int64
	DuplicatesFiltered int64
	ItemsClassified    int64
	ItemsDropped       int64
	AICalls            int64
	AIFailures         int64
	SummaryCacheHits   int64
	ThemesSynthesized  int64

	// Timings
	LastRunDuration    time.Duration
	TotalRunDuration   time.Duration
	AverageRunDuration time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddPagesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesFetched += int64(n)
}

func (m *Metrics) AddItemsFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) IncrementClassified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsClassified++
}

func (m *Metrics) IncrementDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsDropped++
}

func (m *Metrics) IncrementAICalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AICalls++
}

func (m *Metrics) IncrementAIFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AIFailures++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryCacheHits++
}

func (m *Metrics) IncrementThemesSynthesized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ThemesSynthesized++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"pages_fetched":           m.PagesFetched,
		"items_fetched":           m.ItemsFetched,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"items_classified":        m.ItemsClassified,
		"items_dropped":           m.ItemsDropped,
		"ai_calls":                m.AICalls,
		"ai_failures":             m.AIFailures,
		"summary_cache_hits":      m.SummaryCacheHits,
		"themes_synthesized":      m.ThemesSynthesized,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
