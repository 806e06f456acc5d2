package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"intelbrief/internal/app"
	"intelbrief/internal/auth"
	"intelbrief/internal/config"
	"intelbrief/internal/feedpreview"
	"intelbrief/internal/logger"
	"intelbrief/internal/metrics"
)

func main() {
	logger.Init()

	if err := rootCmd().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "intelbrief",
		Short:         "Daily intelligence digest from Inoreader streams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(authCmd(), reportCmd(), previewCmd(), monitorCmd())
	return root
}

func loadApp(ctx context.Context) (*app.App, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Inoreader authorization",
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Authorize through the browser and paste the code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, _, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Session().AuthenticateInteractive(ctx); err != nil {
				return err
			}
			fmt.Println("Authorization complete.")
			return nil
		},
	}

	headless := &cobra.Command{
		Use:   "headless",
		Short: "Authorize through an automated browser session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, cfg, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := auth.HeadlessOptions{Timeout: cfg.HeadlessAuthTimeout}
			if err := a.Session().AuthenticateHeadless(ctx, opts); err != nil {
				return err
			}
			fmt.Println("Authorization complete.")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored credentials still work",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, _, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Authenticate(ctx); err != nil {
				return fmt.Errorf("not authenticated: %w", err)
			}
			fmt.Println("Credentials are valid.")
			return nil
		},
	}

	cmd.AddCommand(login, headless, status)
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		outPath     string
		streamsPath string
		maxArticles int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch, classify, and summarize today's articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if streamsPath != "" {
				cfg.StreamsConfigPath = streamsPath
			}
			if maxArticles > 0 {
				cfg.MaxDailyArticles = maxArticles
			}

			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Run(ctx)
			if err != nil {
				return err
			}

			var out app.Deliverer = app.WriterDeliverer{W: os.Stdout}
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = app.WriterDeliverer{W: f}
			}
			return out.Deliver(ctx, r)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&streamsPath, "streams", "", "path to a YAML stream list, overriding the configured one")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 0, "override the total article budget")
	return cmd
}

func previewCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "preview <stream-id>",
		Short: "Fetch a feed stream directly, without authentication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			items, err := feedpreview.Fetch(ctx, args[0], limit)
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Printf("- %s\n", item.Title)
				if !item.Published.IsZero() {
					fmt.Printf("  %s\n", item.Published.Format(time.RFC1123))
				}
				if item.URL != "" {
					fmt.Printf("  %s\n", item.URL)
				}
			}
			fmt.Printf("%d items\n", len(items))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum items to show")
	return cmd
}

func monitorCmd() *cobra.Command {
	var addr string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "serve-monitor",
		Short: "Run the pipeline on an interval and expose health endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, _, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			mux := http.NewServeMux()
			mux.HandleFunc("/health", healthHandler)
			mux.HandleFunc("/metrics", metricsHandler)

			server := &http.Server{Addr: addr, Handler: mux}
			go func() {
				logger.Info("monitor listening", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("monitor server failed", "error", err)
				}
			}()

			runOnce(ctx, a)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					return server.Shutdown(shutdownCtx)
				case <-ticker.C:
					runOnce(ctx, a)
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8090", "monitor listen address")
	cmd.Flags().DurationVar(&interval, "interval", 24*time.Hour, "time between pipeline runs")
	return cmd
}

func runOnce(ctx context.Context, a *app.App) {
	r, err := a.Run(ctx)
	if err != nil {
		logger.Error("pipeline run failed", "error", err)
		return
	}
	deliverer := app.WriterDeliverer{W: os.Stdout}
	if err := deliverer.Deliver(ctx, r); err != nil {
		logger.Error("report delivery failed", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()
	status := http.StatusOK
	if healthy, ok := stats["is_healthy"].(bool); ok && !healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     http.StatusText(status),
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
