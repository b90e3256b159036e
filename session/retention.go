package session

import (
	"context"
	"time"

	"github.com/use-agent/fahndung/models"
)

// cutoffFor returns the creation time before which records of ct are
// deleted: persons after one year, news after six months.
func cutoffFor(ct models.ContentType, now time.Time) time.Time {
	if ct == models.ContentNews {
		return now.AddDate(0, -6, 0)
	}
	return now.AddDate(-1, 0, 0)
}

// RunRetention deletes stored records that are past their retention window.
// A failure for one content type does not stop the others.
func (s *Service) RunRetention(ctx context.Context) (*models.SessionReport, error) {
	return s.retention(ctx, "")
}

func (s *Service) retention(ctx context.Context, id string) (*models.SessionReport, error) {
	lock := s.locks[KindRetention]
	if !lock.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer lock.Unlock()

	report := s.begin(KindRetention, "", id)
	now := s.Now()
	for _, ct := range []models.ContentType{models.ContentWanted, models.ContentMissing, models.ContentNews} {
		cutoff := cutoffFor(ct, now)
		n, err := s.store.DeleteCreatedBefore(ctx, ct, cutoff)
		if err != nil {
			s.logger.Error("retention delete failed", "session_id", report.ID, "content_type", ct, "error", err)
			report.Error = detail(err)
			continue
		}
		report.Deleted += n
		s.logger.Info("retention applied",
			"session_id", report.ID,
			"content_type", ct,
			"cutoff", cutoff.Format(time.RFC3339),
			"deleted", n,
		)
	}
	s.finish(report)
	return report, nil
}
