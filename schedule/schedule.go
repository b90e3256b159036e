// Package schedule runs crawl sessions and the retention pass on cron
// expressions.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/use-agent/fahndung/config"
	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/recency"
	"github.com/use-agent/fahndung/session"
)

// Runner is the part of session.Service the scheduler drives.
type Runner interface {
	RunPersonCrawl(ctx context.Context) (*models.SessionReport, error)
	RunNewsCrawl(ctx context.Context) (*models.SessionReport, error)
	RunRetention(ctx context.Context) (*models.SessionReport, error)
}

// Entry describes one scheduled job.
type Entry struct {
	Name string    `json:"name"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
}

// Scheduler owns the cron instance.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	entries map[string]cron.EntryID
	specs   map[string]string
}

// New parses the cron expressions of cfg and registers the three jobs.
// Empty expressions disable their job.
func New(cfg config.ScheduleConfig, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(recency.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:  runner,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
		specs:   make(map[string]string),
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (*models.SessionReport, error)
	}{
		{session.KindPersons, cfg.Persons, runner.RunPersonCrawl},
		{session.KindNews, cfg.News, runner.RunNewsCrawl},
		{session.KindRetention, cfg.Retention, runner.RunRetention},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		id, err := s.cron.AddFunc(j.spec, s.job(j.name, j.run))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("schedule %s %q: %w", j.name, j.spec, err)
		}
		s.entries[j.name] = id
		s.specs[j.name] = j.spec
	}
	return s, nil
}

func (s *Scheduler) job(name string, run func(context.Context) (*models.SessionReport, error)) func() {
	return func() {
		report, err := run(s.ctx)
		switch {
		case errors.Is(err, session.ErrAlreadyRunning):
			s.logger.Warn("scheduled run skipped", "job", name, "reason", "already running")
		case err != nil:
			s.logger.Error("scheduled run failed", "job", name, "error", err)
		default:
			s.logger.Info("scheduled run finished",
				"job", name,
				"session_id", report.ID,
				"state", report.State,
			)
		}
	}
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.entries))
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries lists the registered jobs with their next activation.
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, name := range []string{session.KindPersons, session.KindNews, session.KindRetention} {
		id, ok := s.entries[name]
		if !ok {
			continue
		}
		out = append(out, Entry{Name: name, Spec: s.specs[name], Next: s.cron.Entry(id).Next})
	}
	return out
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
