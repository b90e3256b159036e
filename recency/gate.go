package recency

import "time"

// Verdict is the result of the age filter for one item.
type Verdict int

const (
	// Fresh items lie inside the retention window.
	Fresh Verdict = iota
	// Expired items are older than the retention window.
	Expired
	// Unknown items carry no parseable date and are passed through.
	Unknown
)

func (v Verdict) String() string {
	switch v {
	case Fresh:
		return "fresh"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Admitted reports whether the item should be ingested.
func (v Verdict) Admitted() bool {
	return v != Expired
}

// Gate is the age filter for one source.
type Gate struct {
	Window time.Duration
	Format *Format
	Now    func() time.Time
}

// NewGate returns a gate for the given retention window and date format.
func NewGate(window time.Duration, format *Format) *Gate {
	return &Gate{Window: window, Format: format, Now: time.Now}
}

// Cutoff is the oldest admissible instant.
func (g *Gate) Cutoff() time.Time {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return now().Add(-g.Window)
}

// Admit classifies a raw source date. A zero window admits everything.
func (g *Gate) Admit(raw string) Verdict {
	if raw == "" {
		return Unknown
	}
	t, err := g.Format.Parse(raw)
	if err != nil {
		return Unknown
	}
	return g.AdmitTime(t)
}

// AdmitTime classifies an already parsed timestamp.
func (g *Gate) AdmitTime(t time.Time) Verdict {
	if t.IsZero() {
		return Unknown
	}
	if g.Window <= 0 || !t.Before(g.Cutoff()) {
		return Fresh
	}
	return Expired
}

// Tracker counts already-known items seen while paginating one listing and
// signals when the listing should stop. A Tracker is owned by a single
// adapter run and must not be shared.
type Tracker struct {
	threshold int
	enabled   bool
	known     int
	expired   bool
}

// NewTracker creates a tracker. With enabled false it never signals a stop,
// which is the right behaviour for listings that are not sorted newest-first.
func NewTracker(threshold int, enabled bool) *Tracker {
	return &Tracker{threshold: threshold, enabled: enabled && threshold > 0}
}

// SeenKnown records one item that is already in the store.
func (t *Tracker) SeenKnown() {
	t.known++
}

// SeenExpired records one item older than the retention window.
func (t *Tracker) SeenExpired() {
	t.expired = true
}

// Known is the running count of already-ingested items.
func (t *Tracker) Known() int {
	return t.known
}

// ThresholdReached reports whether enough known items were seen that the
// rest of the listing is assumed to be ingested already.
func (t *Tracker) ThresholdReached() bool {
	return t.enabled && t.known >= t.threshold
}

// PastWindow reports whether the listing has reached items older than the
// retention window. Only meaningful for newest-first listings.
func (t *Tracker) PastWindow() bool {
	return t.enabled && t.expired
}
