package models

// APIResponse is the envelope of every JSON API response.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// CrawlRequest narrows a manually triggered crawl session. Empty lists select
// every source of the session kind.
type CrawlRequest struct {
	Jurisdictions []string `json:"jurisdictions"`
	Types         []string `json:"types"`
}

// Parse validates the request and converts it to typed filters.
func (r *CrawlRequest) Parse() ([]Jurisdiction, []ContentType, error) {
	var js []Jurisdiction
	for _, s := range r.Jurisdictions {
		j, err := ParseJurisdiction(s)
		if err != nil {
			return nil, nil, err
		}
		js = append(js, j)
	}
	var ts []ContentType
	for _, s := range r.Types {
		t, err := ParseContentType(s)
		if err != nil {
			return nil, nil, err
		}
		ts = append(ts, t)
	}
	return js, ts, nil
}

// SessionAccepted is returned when a session was started in the background.
type SessionAccepted struct {
	ID    string       `json:"id"`
	Kind  string       `json:"kind"`
	State SessionState `json:"state"`
}

// SourceInfo describes one registered source.
type SourceInfo struct {
	Name             string         `json:"name"`
	Jurisdiction     Jurisdiction   `json:"jurisdiction"`
	ContentType      ContentType    `json:"contentType"`
	Pagination       PaginationKind `json:"pagination"`
	Ordering         Ordering       `json:"ordering"`
	RetentionDays    int            `json:"retentionDays"`
	RecrawlThreshold int            `json:"recrawlThreshold"`
	NeedsBrowser     bool           `json:"needsBrowser"`
}

// Info converts a descriptor for API output.
func (d SourceDescriptor) Info() SourceInfo {
	return SourceInfo{
		Name:             d.Name(),
		Jurisdiction:     d.Jurisdiction,
		ContentType:      d.ContentType,
		Pagination:       d.Pagination,
		Ordering:         d.Ordering,
		RetentionDays:    int(d.Retention.Hours() / 24),
		RecrawlThreshold: d.RecrawlThreshold,
		NeedsBrowser:     d.NeedsBrowser,
	}
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string          `json:"status"`
	Uptime  string          `json:"uptime"`
	Running map[string]bool `json:"running"`
	Sources int             `json:"sources"`
	Version string          `json:"version"`
}
