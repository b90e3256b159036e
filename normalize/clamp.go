package normalize

import (
	"errors"
	"strings"
	"time"

	"github.com/use-agent/fahndung/models"
	"github.com/use-agent/fahndung/recency"
)

// Field length limits of the downstream schema.
const (
	MaxURL               = 500
	MaxName              = 35
	MaxLocation          = 150
	MaxRawDate           = 200
	MaxOffense           = 200
	MaxAppearance        = 500
	MaxPersonDescription = 10000
	MaxNewsTitle         = 200
	MaxNewsDescription   = 400
	NewsTeaserLength     = 250
)

var (
	ErrMissingIdentifier = errors.New("record has no identifier")
	ErrMissingTitle      = errors.New("news item has no title")
	ErrMissingDate       = errors.New("news item has no date")
	ErrNoContent         = errors.New("record has no description")
)

// Finalize cleans, derives and clamps every field of rec and rejects records
// that cannot be stored. Raw person dates are parsed with format when
// possible; the raw text is kept either way.
func (n *Normalizer) Finalize(rec *models.DraftRecord, format *recency.Format) error {
	rec.CrawledURL = strings.TrimSpace(rec.CrawledURL)
	rec.SubmitTipLink = Truncate(strings.TrimSpace(rec.SubmitTipLink), MaxURL)
	if rec.Identifier() == "" {
		return ErrMissingIdentifier
	}
	if len([]rune(rec.Identifier())) > MaxURL {
		return ErrMissingIdentifier
	}

	switch {
	case rec.Wanted != nil:
		w := rec.Wanted
		w.FirstName = Truncate(Line(w.FirstName), MaxName)
		w.LastName = Truncate(Line(w.LastName), MaxName)
		w.CrimeSceneLocation = Truncate(Line(w.CrimeSceneLocation), MaxLocation)
		w.CrimeSceneDateCrawled = Truncate(Line(w.CrimeSceneDateCrawled), MaxRawDate)
		w.CrimeSceneDate = parseOptional(w.CrimeSceneDateCrawled, format)
		w.Description = Truncate(Clean(w.Description), MaxPersonDescription)
		w.Offenses = clampAll(w.Offenses, MaxOffense)
		if w.Offenses == nil {
			w.Offenses = []string{}
		}
		w.Appearance = clampAll(w.Appearance, MaxAppearance)
		if w.Gender == "" {
			w.Gender = models.GenderUnknown
		}
		if w.Nationality == "" {
			w.Nationality = models.DefaultNationality
		}
		if w.Description == "" {
			return ErrNoContent
		}
	case rec.Missing != nil:
		m := rec.Missing
		m.FirstName = Truncate(Line(m.FirstName), MaxName)
		m.LastName = Truncate(Line(m.LastName), MaxName)
		m.LastSeenLocation = Truncate(Line(m.LastSeenLocation), MaxLocation)
		m.LastSeenDateCrawled = Truncate(Line(m.LastSeenDateCrawled), MaxRawDate)
		m.LastSeenDate = parseOptional(m.LastSeenDateCrawled, format)
		m.Description = Truncate(Clean(m.Description), MaxPersonDescription)
		m.Appearance = clampAll(m.Appearance, MaxAppearance)
		if m.Gender == "" {
			m.Gender = models.GenderUnknown
		}
		if m.Description == "" {
			return ErrNoContent
		}
	case rec.News != nil:
		item := rec.News
		item.Title = Truncate(Line(item.Title), MaxNewsTitle)
		item.Description = Truncate(Clean(item.Description), MaxNewsDescription)
		item.Location = Truncate(Line(item.Location), MaxLocation)
		if item.Title == "" {
			return ErrMissingTitle
		}
		if item.Date.IsZero() {
			return ErrMissingDate
		}
	}
	return nil
}

func parseOptional(raw string, format *recency.Format) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := format.Parse(raw)
	if err != nil {
		return nil
	}
	return &t
}

func clampAll(values []string, limit int) []string {
	var out []string
	for _, v := range values {
		if v = Line(v); v != "" {
			out = append(out, Truncate(v, limit))
		}
	}
	return out
}
