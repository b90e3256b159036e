package models

import "time"

// Termination records why an adapter stopped requesting listing pages.
type Termination string

const (
	TerminatedExhausted    Termination = "exhausted"
	TerminatedRecrawl      Termination = "recency-threshold"
	TerminatedExpired      Termination = "expired"
	TerminatedIterationCap Termination = "iteration-cap"
	TerminatedFailed       Termination = "failed"
)

// ItemFailure is one item that did not make it into the store.
type ItemFailure struct {
	URL   string `json:"url"`
	Code  string `json:"code"`
	Cause string `json:"cause"`
}

// CrawlOutcome summarises one adapter run.
type CrawlOutcome struct {
	Source      string        `json:"source"`
	ContentType ContentType   `json:"contentType"`
	Termination Termination   `json:"termination"`
	Pages       int           `json:"pages"`
	Attempted   int           `json:"attempted"`
	Persisted   int           `json:"persisted"`
	Conflicts   int           `json:"conflicts"`
	Failed      []ItemFailure `json:"failed,omitempty"`
	Error       *ErrorDetail  `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Succeeded reports whether the adapter ran to a regular termination.
func (o *CrawlOutcome) Succeeded() bool {
	return o.Error == nil
}

// SessionState is the lifecycle state of a crawl session.
type SessionState string

const (
	SessionIdle            SessionState = "idle"
	SessionRunning         SessionState = "running"
	SessionCompleted       SessionState = "completed"
	SessionPartiallyFailed SessionState = "partially-failed"
)

// SessionReport is the result of one crawl session or retention pass.
type SessionReport struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	ContentType ContentType    `json:"contentType,omitempty"`
	State       SessionState   `json:"state"`
	StartedAt   time.Time      `json:"startedAt"`
	FinishedAt  time.Time      `json:"finishedAt,omitempty"`
	Outcomes    []CrawlOutcome `json:"outcomes,omitempty"`
	Deleted     int64          `json:"deleted,omitempty"`
	Error       *ErrorDetail   `json:"error,omitempty"`
}

// Totals sums persisted and failed items across all outcomes.
func (r *SessionReport) Totals() (persisted, conflicts, failed int) {
	for _, o := range r.Outcomes {
		persisted += o.Persisted
		conflicts += o.Conflicts
		failed += len(o.Failed)
	}
	return persisted, conflicts, failed
}
