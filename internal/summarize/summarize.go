// Package summarize produces per-article summaries and per-theme syntheses,
// degrading to deterministic text whenever the AI path is unavailable.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"intelbrief/internal/classify"
	"intelbrief/internal/gemini"
	"intelbrief/internal/htmlclean"
	"intelbrief/internal/inoreader"
	"intelbrief/internal/metrics"
	"intelbrief/internal/storage"
)

// Summarizer is the AI seam. gemini.Client satisfies it.
type Summarizer interface {
	SummarizeArticle(ctx context.Context, title, content string) (string, error)
	SynthesizeTheme(ctx context.Context, theme, digest string) (string, error)
}

// Cache stores finished article summaries across runs. storage.FileCache
// and storage.PostgresCache satisfy it.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, summary string) error
}

// Budget gates AI calls. ratelimit.Limiter satisfies it.
type Budget interface {
	Allow(kind string) bool
}

type Engine struct {
	ai          Summarizer
	cache       Cache
	budget      Budget
	maxPerTheme int
	maxChars    int
	log         *slog.Logger
}

type Option func(*Engine)

func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func WithBudget(b Budget) Option {
	return func(e *Engine) { e.budget = b }
}

func WithMaxPerTheme(n int) Option {
	return func(e *Engine) { e.maxPerTheme = n }
}

func WithMaxChars(n int) Option {
	return func(e *Engine) { e.maxChars = n }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds a summarization engine. A nil Summarizer means every
// summary and synthesis takes the deterministic path.
func NewEngine(ai Summarizer, opts ...Option) *Engine {
	e := &Engine{
		ai:          ai,
		maxPerTheme: 10,
		maxChars:    1200,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SummarizeItem returns a bounded summary for one article. The feed's own
// summary is used when already short enough; otherwise the cache, then the
// AI, then plain truncation of the article text.
func (e *Engine) SummarizeItem(ctx context.Context, item inoreader.Item) string {
	existing := htmlclean.Text(item.Summary)
	if existing != "" && len([]rune(existing)) <= e.maxChars {
		return existing
	}

	content := htmlclean.Text(item.Text())
	key := storage.Key(item.ID, content)
	if e.cache != nil {
		if summary, ok := e.cache.Get(key); ok {
			metrics.Global.IncrementCacheHits()
			return summary
		}
	}

	if e.ai != nil && (e.budget == nil || e.budget.Allow("summarize")) {
		metrics.Global.IncrementAICalls()
		summary, err := e.ai.SummarizeArticle(ctx, item.Title, content)
		if err == nil {
			summary = gemini.Truncate(summary, e.maxChars)
			if e.cache != nil {
				if err := e.cache.Put(key, summary); err != nil {
					e.log.Warn("failed to cache summary", "item", item.ID, "error", err)
				}
			}
			return summary
		}
		metrics.Global.IncrementAIFailures()
		e.log.Warn("article summarization failed, truncating instead", "item", item.ID, "error", err)
	}

	return gemini.Truncate(content, e.maxChars)
}

// Aggregate fills in each bucket's Synthesis and returns the per-item
// summaries keyed by item ID. Only the first maxPerTheme items of a bucket
// are summarized and fed to synthesis; a failed synthesis downgrades to a
// deterministic placeholder, never an error.
func (e *Engine) Aggregate(ctx context.Context, buckets []*classify.Bucket) map[string]string {
	summaries := make(map[string]string)

	for _, bucket := range buckets {
		items := bucket.Items
		if len(items) > e.maxPerTheme {
			items = items[:e.maxPerTheme]
		}

		var digest strings.Builder
		for _, item := range items {
			summary := e.SummarizeItem(ctx, item)
			summaries[item.ID] = summary
			fmt.Fprintf(&digest, "• %s: %s\n", item.Title, summary)
		}

		bucket.Synthesis = e.synthesize(ctx, bucket.Theme, digest.String(), len(bucket.Items))
		metrics.Global.IncrementThemesSynthesized()
	}
	return summaries
}

func (e *Engine) synthesize(ctx context.Context, theme, digest string, total int) string {
	if e.ai != nil && digest != "" && (e.budget == nil || e.budget.Allow("synthesize")) {
		metrics.Global.IncrementAICalls()
		synthesis, err := e.ai.SynthesizeTheme(ctx, theme, digest)
		if err == nil {
			return synthesis
		}
		metrics.Global.IncrementAIFailures()
		e.log.Warn("theme synthesis failed, using placeholder", "theme", theme, "error", err)
	}
	return Placeholder(theme, total)
}

// Placeholder is the deterministic stand-in for a theme whose synthesis
// could not be generated.
func Placeholder(theme string, articles int) string {
	return fmt.Sprintf("Theme: %s - %d articles covering recent developments.", theme, articles)
}
