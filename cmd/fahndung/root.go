package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/use-agent/fahndung/adapter"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/history"
	"github.com/use-agent/fahndung/metrics"
	"github.com/use-agent/fahndung/scraper"
	"github.com/use-agent/fahndung/session"
	"github.com/use-agent/fahndung/store"
	"github.com/use-agent/fahndung/webhook"
	"gopkg.in/natefinch/lumberjack.v2"
)

func newRootCmd() *cobra.Command {
	var sourcesFile string

	root := &cobra.Command{
		Use:           "fahndung",
		Short:         "Crawls German police wanted, missing and news notices",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if sourcesFile != "" {
				os.Setenv("FAHNDUNG_SOURCES_FILE", sourcesFile) //nolint:errcheck
			}
		},
	}
	root.PersistentFlags().StringVar(&sourcesFile, "sources", "", "YAML file with per-source overrides")

	root.AddCommand(
		newServeCmd(),
		newCrawlCmd(),
		newRetentionCmd(),
		newSourcesCmd(),
		newMigrateCmd(),
	)
	return root
}

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *adapter.Registry
	store    store.Store
	history  *history.History
	service  *session.Service
	gatherer prometheus.Gatherer
}

// newRegistry builds the adapter registry, applying the sources file.
func newRegistry(cfg *config.Config, logger *slog.Logger) (*adapter.Registry, error) {
	var sources *config.SourcesFile
	if cfg.SourcesFile != "" {
		sf, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}
		sources = sf
	}
	return adapter.NewRegistry(adapter.OptionsFrom(cfg.Crawl, logger), sources), nil
}

// newApp wires the store, observers and session service.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	registry, err := newRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	launcher, err := scraper.NewLauncher(cfg, logger)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hist := history.New(cfg.History.MaxEntries, cfg.History.TTL)
	observers := []session.Observer{metrics.New(reg), hist}
	if cfg.Webhook.URL != "" {
		observers = append(observers, webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret, logger))
		logger.Info("webhook notifications enabled", "url", cfg.Webhook.URL)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		store:    st,
		history:  hist,
		service:  session.New(registry, launcher, st, cfg.Crawl, logger, observers...),
		gatherer: reg,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("close store", "error", err)
	}
}

// newLogger builds the slog logger. Output goes to stdout and, when a file
// is configured, to a size-rotated log file.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}
