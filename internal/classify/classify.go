// Package classify assigns articles to analytical themes, using an AI
// labeler when one is available and a deterministic keyword table otherwise.
package classify

import (
	"context"
	"log/slog"
	"strings"

	"intelbrief/internal/htmlclean"
	"intelbrief/internal/inoreader"
	"intelbrief/internal/metrics"
)

// Labeler is the AI classification seam. gemini.Client satisfies it.
type Labeler interface {
	Classify(ctx context.Context, themes []string, title, content string) (string, error)
}

// Budget gates AI calls. ratelimit.Limiter satisfies it.
type Budget interface {
	Allow(kind string) bool
}

// DefaultMaxNovelThemes bounds how many model-invented theme names one pass
// will accept before overflow items are routed through the keyword fallback.
const DefaultMaxNovelThemes = 16

// Result records where one item ended up. Dropped items carry no theme.
type Result struct {
	Item    inoreader.Item
	Theme   string
	Dropped bool
}

type Engine struct {
	labeler        Labeler
	budget         Budget
	maxNovelThemes int
	log            *slog.Logger
}

type EngineOption func(*Engine)

func WithBudget(b Budget) EngineOption {
	return func(e *Engine) { e.budget = b }
}

func WithMaxNovelThemes(n int) EngineOption {
	return func(e *Engine) { e.maxNovelThemes = n }
}

func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds a classification engine. A nil labeler means keyword-only
// classification.
func NewEngine(labeler Labeler, opts ...EngineOption) *Engine {
	e := &Engine{
		labeler:        labeler,
		maxNovelThemes: DefaultMaxNovelThemes,
		log:            slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClassifyAll produces one Result per input item, in input order. A failed
// AI call drops the affected item; an exhausted budget degrades remaining
// items to the keyword fallback. Neither ever fails the batch.
func (e *Engine) ClassifyAll(ctx context.Context, items []inoreader.Item) []Result {
	results := make([]Result, 0, len(items))
	novel := make(map[string]struct{})

	for _, item := range items {
		res := e.classifyOne(ctx, item, novel)
		if res.Dropped {
			metrics.Global.IncrementDropped()
		} else {
			metrics.Global.IncrementClassified()
		}
		results = append(results, res)
	}
	return results
}

func (e *Engine) classifyOne(ctx context.Context, item inoreader.Item, novel map[string]struct{}) Result {
	if e.labeler == nil || (e.budget != nil && !e.budget.Allow("classify")) {
		return e.fallback(item)
	}

	content := htmlclean.Text(item.Text())
	metrics.Global.IncrementAICalls()
	label, err := e.labeler.Classify(ctx, Themes, item.Title, content)
	if err != nil {
		metrics.Global.IncrementAIFailures()
		e.log.Warn("classification call failed, dropping item", "item", item.ID, "error", err)
		return Result{Item: item, Dropped: true}
	}

	theme, ok := e.resolveLabel(label, novel)
	if !ok {
		return Result{Item: item, Dropped: true}
	}
	return Result{Item: item, Theme: theme}
}

// resolveLabel normalizes a raw model answer: drop labels are rejected,
// synonyms collapse to canonical themes, unknown names pass through until
// the novel-theme cap is hit.
func (e *Engine) resolveLabel(label string, novel map[string]struct{}) (string, bool) {
	label = strings.TrimSpace(strings.Trim(strings.TrimSpace(label), `."'`))
	if label == "" {
		return "", false
	}
	lower := strings.ToLower(label)

	if _, drop := dropLabels[lower]; drop {
		return "", false
	}
	if canonical, ok := synonyms[lower]; ok {
		return canonical, true
	}
	for _, theme := range Themes {
		if strings.EqualFold(theme, label) {
			return theme, true
		}
	}

	if _, seen := novel[label]; seen {
		return label, true
	}
	if len(novel) >= e.maxNovelThemes {
		e.log.Debug("novel theme cap reached, dropping label", "label", label)
		return "", false
	}
	novel[label] = struct{}{}
	return label, true
}

// fallback classifies by keyword match over title and summary. The first
// matching theme in table order wins; no match means the item is dropped.
func (e *Engine) fallback(item inoreader.Item) Result {
	content := strings.ToLower(item.Title + " " + htmlclean.Text(item.Summary))
	for _, entry := range fallbackKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(content, kw) {
				return Result{Item: item, Theme: entry.theme}
			}
		}
	}
	return Result{Item: item, Dropped: true}
}

// Bucket groups the surviving items of one theme.
type Bucket struct {
	Theme     string
	Items     []inoreader.Item
	Synthesis string
}

// BucketsOf groups results by theme: canonical themes first in their stable
// order, then novel themes in first-seen order. Dropped results are skipped,
// and canonical themes with no items produce no bucket.
func BucketsOf(results []Result) []*Bucket {
	byTheme := make(map[string]*Bucket)
	var order []string

	canonical := make(map[string]struct{}, len(Themes))
	for _, theme := range Themes {
		canonical[theme] = struct{}{}
	}

	for _, res := range results {
		if res.Dropped {
			continue
		}
		b, ok := byTheme[res.Theme]
		if !ok {
			b = &Bucket{Theme: res.Theme}
			byTheme[res.Theme] = b
			if _, isCanonical := canonical[res.Theme]; !isCanonical {
				order = append(order, res.Theme)
			}
		}
		b.Items = append(b.Items, res.Item)
	}

	var buckets []*Bucket
	for _, theme := range Themes {
		if b, ok := byTheme[theme]; ok {
			buckets = append(buckets, b)
		}
	}
	for _, theme := range order {
		buckets = append(buckets, byTheme[theme])
	}
	return buckets
}
