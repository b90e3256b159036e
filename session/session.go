// Package session runs crawl sessions: it opens the browser, runs every
// selected adapter against a store snapshot, persists what they extract and
// records one outcome per adapter.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/fahndung/adapter"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/dedup"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/scraper"
	"github.com/use-agent/fahndung/store"
	"golang.org/x/sync/errgroup"
)

// Session kinds.
const (
	KindPersons   = "persons"
	KindNews      = "news"
	KindRetention = "retention"
)

// newsBatchSize is how many news items are collected before InsertMany.
const newsBatchSize = 50

// ErrAlreadyRunning is returned when a session of the same kind is in progress.
var ErrAlreadyRunning = errors.New("session: a session of this kind is already running")

// Catalog supplies the adapters of each session kind.
type Catalog interface {
	Persons() []adapter.Adapter
	News() []adapter.Adapter
}

// Observer is told about session progress. Implementations must not block.
type Observer interface {
	SessionStarted(r models.SessionReport)
	AdapterFinished(r models.SessionReport, o models.CrawlOutcome)
	SessionFinished(r models.SessionReport)
}

// Request narrows a crawl session. Empty filters select every adapter of
// the kind.
type Request struct {
	// ID is the session ID; one is generated when empty.
	ID            string
	Jurisdictions []models.Jurisdiction
	Types         []models.ContentType
}

// Service runs sessions. Sessions of different kinds may run concurrently;
// a second session of a running kind is refused.
type Service struct {
	catalog   Catalog
	launcher  scraper.Launcher
	store     store.Store
	cfg       config.CrawlConfig
	logger    *slog.Logger
	observers []Observer

	// Now is the session clock; it defaults to time.Now.
	Now func() time.Time

	locks map[string]*sync.Mutex
}

// New creates a Service.
func New(catalog Catalog, launcher scraper.Launcher, st store.Store, cfg config.CrawlConfig, logger *slog.Logger, observers ...Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:   catalog,
		launcher:  launcher,
		store:     st,
		cfg:       cfg,
		logger:    logger,
		observers: observers,
		Now:       time.Now,
		locks: map[string]*sync.Mutex{
			KindPersons:   {},
			KindNews:      {},
			KindRetention: {},
		},
	}
}

// RunPersonCrawl crawls every wanted and missing person source.
func (s *Service) RunPersonCrawl(ctx context.Context) (*models.SessionReport, error) {
	return s.Crawl(ctx, KindPersons, Request{})
}

// RunNewsCrawl crawls every news source.
func (s *Service) RunNewsCrawl(ctx context.Context) (*models.SessionReport, error) {
	return s.Crawl(ctx, KindNews, Request{})
}

// Run runs a session of any kind. Filters in req are ignored for retention.
func (s *Service) Run(ctx context.Context, kind string, req Request) (*models.SessionReport, error) {
	if kind == KindRetention {
		return s.retention(ctx, req.ID)
	}
	return s.Crawl(ctx, kind, req)
}

// Crawl runs one crawl session of the given kind.
func (s *Service) Crawl(ctx context.Context, kind string, req Request) (*models.SessionReport, error) {
	var adapters []adapter.Adapter
	var ct models.ContentType
	switch kind {
	case KindPersons:
		adapters = s.catalog.Persons()
	case KindNews:
		adapters = s.catalog.News()
		ct = models.ContentNews
	default:
		return nil, models.NewCrawlError(models.ErrCodeInvalidInput, "unknown session kind "+kind, nil)
	}
	adapters = adapter.Select(adapters, req.Jurisdictions, req.Types)

	lock := s.locks[kind]
	if !lock.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer lock.Unlock()

	report := s.begin(kind, ct, req.ID)
	s.run(ctx, report, adapters)
	s.finish(report)
	return report, nil
}

// Running reports whether a session of kind is in progress.
func (s *Service) Running(kind string) bool {
	lock, ok := s.locks[kind]
	if !ok {
		return false
	}
	if lock.TryLock() {
		lock.Unlock()
		return false
	}
	return true
}

func (s *Service) begin(kind string, ct models.ContentType, id string) *models.SessionReport {
	if id == "" {
		id = uuid.NewString()
	}
	report := &models.SessionReport{
		ID:          id,
		Kind:        kind,
		ContentType: ct,
		State:       models.SessionRunning,
		StartedAt:   s.Now(),
	}
	s.logger.Info("crawl session started", "session_id", id, "kind", kind)
	for _, o := range s.observers {
		o.SessionStarted(*report)
	}
	return report
}

func (s *Service) finish(report *models.SessionReport) {
	report.FinishedAt = s.Now()
	report.State = models.SessionCompleted
	if report.Error != nil {
		report.State = models.SessionPartiallyFailed
	}
	for _, o := range report.Outcomes {
		if !o.Succeeded() {
			report.State = models.SessionPartiallyFailed
		}
	}

	persisted, conflicts, failed := report.Totals()
	s.logger.Info("crawl session finished",
		"session_id", report.ID,
		"kind", report.Kind,
		"state", report.State,
		"adapters", len(report.Outcomes),
		"persisted", persisted,
		"conflicts", conflicts,
		"failed_items", failed,
		"deleted", report.Deleted,
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	for _, o := range s.observers {
		o.SessionFinished(*report)
	}
}

// run executes the adapters on a bounded pool. Each worker slot owns one
// page at a time; the browser is closed before run returns.
func (s *Service) run(ctx context.Context, report *models.SessionReport, adapters []adapter.Adapter) {
	timeout := s.cfg.SessionTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outcomes := make([]models.CrawlOutcome, len(adapters))
	var mu sync.Mutex
	record := func(i int, o models.CrawlOutcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[i] = o
		snapshot := *report
		for _, obs := range s.observers {
			obs.AdapterFinished(snapshot, o)
		}
	}

	browser, err := s.launcher.Launch(ctx)
	if err != nil {
		s.logger.Error("browser launch failed", "session_id", report.ID, "error", err)
		for i, a := range adapters {
			record(i, failedOutcome(a.Source(), err))
		}
		report.Outcomes = outcomes
		return
	}
	defer func() {
		if err := browser.Close(); err != nil {
			s.logger.Warn("browser close failed", "session_id", report.ID, "error", err)
		}
	}()

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	pool := &pagePool{browser: browser, idle: make(chan scraper.Page, workers)}
	defer pool.close()

	var g errgroup.Group
	g.SetLimit(workers)
	for i, a := range adapters {
		g.Go(func() error {
			record(i, s.runAdapter(ctx, pool, report.ID, a))
			return nil
		})
	}
	_ = g.Wait()

	report.Outcomes = outcomes
}

// runAdapter runs one adapter to completion and never fails the session.
func (s *Service) runAdapter(ctx context.Context, pool *pagePool, sessionID string, a adapter.Adapter) models.CrawlOutcome {
	d := a.Source()
	start := s.Now()
	log := s.logger.With("session_id", sessionID, "source", d.Name())

	if err := ctx.Err(); err != nil {
		log.Warn("adapter skipped, session deadline reached")
		return failedOutcome(d, models.NewCrawlError(models.ErrCodeTimeout, "session deadline reached before the adapter started", err))
	}

	log.Info("adapter started")
	out := models.CrawlOutcome{Source: d.Name(), ContentType: d.ContentType}

	known, err := s.store.KnownIdentifiers(ctx, d.Jurisdiction, d.ContentType)
	if err != nil {
		log.Error("loading known identifiers failed", "error", err)
		return failedOutcome(d, err)
	}
	filter := dedup.New(known)

	page, err := pool.get(ctx)
	if err != nil {
		log.Error("opening page failed", "error", err)
		return failedOutcome(d, models.NewCrawlError(models.ErrCodeBrowserCrash, "failed to open page", err))
	}

	p := &persister{store: s.store, out: &out, log: log, batched: d.ContentType == models.ContentNews}
	disc, runErr := a.Run(ctx, page, filter, func(r adapter.Result) bool {
		if r.Err != nil {
			p.fail(r.URL, r.Err)
			return true
		}
		p.add(ctx, r.Record)
		return true
	})
	p.flush(ctx)
	pool.put(page, runErr)

	out.Pages = disc.Pages
	out.Attempted = disc.Attempted
	out.Termination = disc.Termination
	out.Duration = s.Now().Sub(start)
	if runErr != nil {
		out.Termination = models.TerminatedFailed
		out.Error = detail(runErr)
		log.Error("adapter failed", "error", runErr, "attempted", out.Attempted, "persisted", out.Persisted)
		return out
	}

	log.Info("adapter finished",
		"termination", out.Termination,
		"pages", out.Pages,
		"candidates", disc.Candidates,
		"known", disc.Known,
		"expired", disc.Expired,
		"attempted", out.Attempted,
		"persisted", out.Persisted,
		"conflicts", out.Conflicts,
		"failed", len(out.Failed),
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out
}

// persister writes extracted records: persons one by one, news in batches.
type persister struct {
	store   store.Store
	out     *models.CrawlOutcome
	log     *slog.Logger
	batched bool
	pending []*models.DraftRecord
}

func (p *persister) fail(url string, err error) {
	code := models.CodeOf(err)
	p.out.Failed = append(p.out.Failed, models.ItemFailure{URL: url, Code: code, Cause: err.Error()})
	p.log.Warn("item failed", "url", url, "code", code, "error", err)
}

func (p *persister) add(ctx context.Context, rec *models.DraftRecord) {
	if p.batched {
		p.pending = append(p.pending, rec)
		if len(p.pending) >= newsBatchSize {
			p.flush(ctx)
		}
		return
	}
	switch err := p.store.InsertOne(ctx, rec); {
	case err == nil:
		p.out.Persisted++
	case errors.Is(err, store.ErrConflict):
		p.out.Conflicts++
		p.log.Debug("record already stored", "url", rec.Identifier())
	default:
		p.fail(rec.Identifier(), err)
	}
}

func (p *persister) flush(ctx context.Context) {
	if len(p.pending) == 0 {
		return
	}
	batch := p.pending
	p.pending = nil
	res, err := p.store.InsertMany(ctx, batch)
	if err != nil {
		for _, rec := range batch {
			p.fail(rec.Identifier(), err)
		}
		return
	}
	p.out.Persisted += res.Inserted
	p.out.Conflicts += res.Conflicts
}

func failedOutcome(d models.SourceDescriptor, err error) models.CrawlOutcome {
	return models.CrawlOutcome{
		Source:      d.Name(),
		ContentType: d.ContentType,
		Termination: models.TerminatedFailed,
		Error:       detail(err),
	}
}

func detail(err error) *models.ErrorDetail {
	return &models.ErrorDetail{Code: models.CodeOf(err), Message: err.Error()}
}
