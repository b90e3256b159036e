// Package api exposes the operator HTTP API: manual session triggers, run
// history, the source catalogue and Prometheus metrics.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/use-agent/fahndung/api/handler"
	"github.com/use-agent/fahndung/api/middleware"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/history"
	"github.com/use-agent/fahndung/metrics"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/schedule"
	"github.com/use-agent/fahndung/session"
)

// Deps are the components the router serves.
type Deps struct {
	Sessions  handler.Sessions
	History   *history.History
	Sources   []models.SourceDescriptor
	Scheduler *schedule.Scheduler // nil when scheduling is disabled
	Gatherer  prometheus.Gatherer
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so health checks and scrapers always work.
// ctx bounds the rate limiter's background cleanup and is the parent of
// every manually triggered session.
func NewRouter(ctx context.Context, d Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(d.Sessions, len(d.Sources), d.StartTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	// Sessions
	trigger := &handler.Trigger{Sessions: d.Sessions, Ctx: ctx, Logger: d.Logger}
	protected.POST("/crawl/persons", trigger.PostCrawl(session.KindPersons))
	protected.POST("/crawl/news", trigger.PostCrawl(session.KindNews))
	protected.POST("/retention", trigger.PostRetention())

	// History
	protected.GET("/runs", handler.ListRuns(d.History))
	protected.GET("/runs/:id", handler.GetRun(d.History))

	// Catalogue
	protected.GET("/sources", handler.Sources(d.Sources))
	protected.GET("/schedule", handler.Schedule(d.Scheduler))

	return r
}
