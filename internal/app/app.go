// Package app wires the pipeline together: authentication, stream
// fetching, deduplication, classification, aggregation, and report
// assembly.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"intelbrief/internal/auth"
	"intelbrief/internal/browser"
	"intelbrief/internal/classify"
	"intelbrief/internal/config"
	"intelbrief/internal/gemini"
	"intelbrief/internal/inoreader"
	"intelbrief/internal/logger"
	"intelbrief/internal/metrics"
	"intelbrief/internal/ratelimit"
	"intelbrief/internal/report"
	"intelbrief/internal/retry"
	"intelbrief/internal/storage"
	"intelbrief/internal/summarize"
)

// Deliverer pushes a finished report to some channel. Delivery transports
// live outside this module; the CLI's stdout renderer is the built-in one.
type Deliverer interface {
	Deliver(ctx context.Context, r *report.Report) error
}

// WriterDeliverer renders reports as plain text to a writer.
type WriterDeliverer struct {
	W io.Writer
}

func (d WriterDeliverer) Deliver(_ context.Context, r *report.Report) error {
	return r.Render(d.W)
}

// App owns the long-lived pieces of the pipeline.
type App struct {
	cfg     *config.Config
	session *auth.Session
	client  *inoreader.Client
	ai      *gemini.Client
	limiter *ratelimit.Limiter
	cache   summarize.Cache
}

// New builds the application from config. The Gemini client is optional:
// without an API key the pipeline runs on keyword classification and
// truncation summaries.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store := auth.NewTokenStore(cfg.TokenFile)
	session := auth.NewSession(
		auth.InoreaderConfig(cfg.AppID, cfg.AppKey, cfg.RedirectURI),
		store,
		auth.WithURLOpener(browser.Open),
	)
	session.Load()

	a := &App{
		cfg:     cfg,
		session: session,
		client: inoreader.NewClient(
			session.Client(cfg.RequestTimeout),
			inoreader.WithClientLogger(logger.With("component", "inoreader")),
		),
		limiter: ratelimit.NewLimiter(cfg.MaxAIRequests),
	}

	if cfg.GeminiAPIKey != "" {
		ai, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		a.ai = ai
	} else {
		logger.Warn("no gemini api key configured, running with keyword classification only")
	}

	if cache, err := openSummaryCache(cfg); err != nil {
		logger.Warn("summary cache unavailable, summaries will not persist", "error", err)
	} else {
		a.cache = cache
	}
	return a, nil
}

// openSummaryCache prefers the shared Postgres cache and falls back to the
// local file cache. No cache configured at all is valid.
func openSummaryCache(cfg *config.Config) (summarize.Cache, error) {
	ttl := time.Duration(cfg.SummaryCacheTTLHours) * time.Hour
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresCache(cfg.DatabaseURL, ttl)
		if err != nil {
			return nil, err
		}
		if err := pg.Cleanup(); err != nil {
			logger.Warn("summary cache cleanup failed", "error", err)
		}
		return pg, nil
	}
	if cfg.SummaryCachePath != "" {
		return storage.NewFileCache(cfg.SummaryCachePath, ttl)
	}
	return nil, nil
}

// Close releases the AI client and flushes the summary cache.
func (a *App) Close() {
	if a.ai != nil {
		if err := a.ai.Close(); err != nil {
			logger.Warn("closing gemini client", "error", err)
		}
	}
	if closer, ok := a.cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("closing summary cache", "error", err)
		}
	}
}

// Session exposes the auth session for the CLI's auth subcommands.
func (a *App) Session() *auth.Session {
	return a.session
}

// Authenticate runs the unattended auth flow and verifies API access.
func (a *App) Authenticate(ctx context.Context) error {
	if err := a.session.AuthenticateAutomatic(ctx); err != nil {
		return err
	}
	info, err := a.client.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("verify api access: %w", err)
	}
	logger.Info("authenticated", "user", info.UserName)
	return nil
}

// streams resolves the stream IDs to fetch: the streams file when
// configured, otherwise the focus folder looked up via tag/list.
func (a *App) streams(ctx context.Context) ([]string, error) {
	if a.cfg.StreamsConfigPath != "" {
		ids, err := config.LoadStreams(a.cfg.StreamsConfigPath)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}
	if a.cfg.FocusFolder != "" {
		folder, err := a.client.FindFolder(ctx, a.cfg.FocusFolder)
		if err != nil {
			return nil, err
		}
		return []string{folder.ID}, nil
	}
	return nil, errors.New("no streams configured: set STREAMS_CONFIG_PATH or FOCUS_FOLDER")
}

// fetch pulls today's items from one stream, honoring the remaining budget.
// Transient page failures are retried; expired credentials are not.
func (a *App) fetch(ctx context.Context, streamID string, budget int) []inoreader.Item {
	var items []inoreader.Item
	retryCfg := retry.Config{
		MaxAttempts: a.cfg.RetryAttempts,
		Delay:       a.cfg.RetryDelay,
		Backoff:     true,
	}
	notAuthError := func(err error) bool {
		return !errors.Is(err, auth.ErrAuthExpired) && !errors.Is(err, auth.ErrNotAuthenticated)
	}

	err := retry.Do(ctx, retryCfg, notAuthError, func() error {
		var fetchErr error
		if a.cfg.UsePagination {
			items, fetchErr = a.client.TodaysArticles(ctx, streamID, budget, a.cfg.PageSize)
		} else {
			n := budget
			if a.cfg.PageSize < n {
				n = a.cfg.PageSize
			}
			now := time.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			items, _, fetchErr = a.client.FetchPage(ctx, streamID, n, "", midnight)
		}
		return fetchErr
	})
	if err != nil {
		// Partial results from a failed walk still count toward the digest.
		logger.Warn("stream fetch incomplete", "stream", streamID, "items", len(items), "error", err)
	}
	metrics.Global.AddItemsFetched(len(items))
	return items
}

// Run executes one full pipeline pass and returns the assembled report.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()
	defer func() { metrics.Global.RecordRunDuration(time.Since(start)) }()

	if err := a.Authenticate(ctx); err != nil {
		metrics.Global.SetError(err.Error())
		return nil, err
	}

	streamIDs, err := a.streams(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, err
	}

	var sequences [][]inoreader.Item
	remaining := a.cfg.MaxDailyArticles
	fetched := 0
	for _, streamID := range streamIDs {
		if remaining <= 0 {
			break
		}
		items := a.fetch(ctx, streamID, remaining)
		sequences = append(sequences, items)
		remaining -= len(items)
		fetched += len(items)
	}

	items := inoreader.Dedupe(sequences...)
	metrics.Global.AddDuplicatesFiltered(fetched - len(items))
	logger.Info("fetched articles", "total", fetched, "unique", len(items), "streams", len(streamIDs))
	if len(items) == 0 {
		err := errors.New("no articles fetched for today")
		metrics.Global.SetError(err.Error())
		return nil, err
	}

	engine := classify.NewEngine(
		a.labeler(),
		classify.WithBudget(a.limiter),
		classify.WithEngineLogger(logger.With("component", "classify")),
	)
	buckets := classify.BucketsOf(engine.ClassifyAll(ctx, items))

	summarizer := summarize.NewEngine(
		a.summarizer(),
		summarize.WithBudget(a.limiter),
		summarize.WithCache(a.cache),
		summarize.WithMaxPerTheme(a.cfg.MaxArticlesPerTheme),
		summarize.WithMaxChars(a.cfg.SummaryMaxChars),
		summarize.WithLogger(logger.With("component", "summarize")),
	)
	summaries := summarizer.Aggregate(ctx, buckets)

	r := report.Build(a.cfg.ReportTitle, buckets, summaries, a.cfg.MaxArticlesPerTheme, a.cfg.ContentChunkLimit)
	metrics.Global.SetLastRun()
	logger.Info("report assembled", "themes", len(r.Sections), "articles", r.TotalArticles)
	return r, nil
}

// labeler returns the AI classification seam, nil when no AI is configured.
// The indirection keeps a typed-nil *gemini.Client out of the interface.
func (a *App) labeler() classify.Labeler {
	if a.ai == nil {
		return nil
	}
	return a.ai
}

func (a *App) summarizer() summarize.Summarizer {
	if a.ai == nil {
		return nil
	}
	return a.ai
}
