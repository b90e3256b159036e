package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/fahndung/api"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/schedule"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the operator API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	a.logger.Info("fahndung starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"engine", cfg.Browser.Engine,
		"sources", len(a.registry.All()),
		"workers", cfg.Crawl.Workers,
	)

	var sched *schedule.Scheduler
	if cfg.Schedule.Enabled {
		sched, err = schedule.New(cfg.Schedule, a.service, a.logger)
		if err != nil {
			return err
		}
		sched.Start()
	}

	descriptors := make([]models.SourceDescriptor, 0, len(a.registry.All()))
	for _, ad := range a.registry.All() {
		descriptors = append(descriptors, ad.Source())
	}
	router := api.NewRouter(ctx, api.Deps{
		Sessions:  a.service,
		History:   a.history,
		Sources:   descriptors,
		Scheduler: sched,
		Gatherer:  a.gatherer,
		StartTime: time.Now(),
		Logger:    a.logger,
	}, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server forced shutdown", "error", err)
	} else {
		a.logger.Info("HTTP server drained gracefully")
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			a.logger.Error("scheduler did not stop in time", "error", err)
		}
	}

	slog.Info("fahndung stopped")
	return nil
}
