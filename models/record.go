package models

import "time"

// Gender is the closed set of normalized gender values.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// DefaultNationality is stored when a notice does not name one.
const DefaultNationality = "unbekannt"

// CandidateLink is an item reference discovered on a listing page.
type CandidateLink struct {
	URL         string
	SourceDate  string
	ContentType ContentType
	// Listing is the URL of the listing position the link was found on.
	Listing string

	// Inline carries the full record for listings that render every
	// field in place, so no detail page has to be visited.
	Inline *DraftRecord
}

// WantedPerson is the canonical shape of a wanted notice.
type WantedPerson struct {
	IsUnknown             bool       `json:"isUnknown"`
	FirstName             string     `json:"firstName,omitempty"`
	LastName              string     `json:"lastName,omitempty"`
	Offenses              []string   `json:"offenses"`
	CrimeSceneLocation    string     `json:"crimeSceneLocation,omitempty"`
	CrimeSceneDateCrawled string     `json:"crimeSceneDateCrawled,omitempty"`
	CrimeSceneDate        *time.Time `json:"crimeSceneDate,omitempty"`
	Bounty                int        `json:"bounty"`
	Description           string     `json:"description"`
	Appearance            []string   `json:"appearance,omitempty"`
	Age                   *int       `json:"age,omitempty"`
	Gender                Gender     `json:"gender"`
	Height                *int       `json:"height,omitempty"`
	Nationality           string     `json:"nationality"`
}

// MissingPerson is the canonical shape of a missing-person notice.
type MissingPerson struct {
	FirstName           string     `json:"firstName,omitempty"`
	LastName            string     `json:"lastName,omitempty"`
	LastSeenLocation    string     `json:"lastSeenLocation,omitempty"`
	LastSeenDateCrawled string     `json:"lastSeenDateCrawled,omitempty"`
	LastSeenDate        *time.Time `json:"lastSeenDate,omitempty"`
	Description         string     `json:"description"`
	Appearance          []string   `json:"appearance,omitempty"`
	Age                 *int       `json:"age,omitempty"`
	Gender              Gender     `json:"gender"`
	Height              *int       `json:"height,omitempty"`
}

// NewsItem is the canonical shape of a police news brief.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Date        time.Time `json:"date"`
	Link        string    `json:"link"`
}

// DraftRecord is a normalized record that has not been persisted yet.
// Exactly one of Wanted, Missing and News is set, matching Type.
type DraftRecord struct {
	Type          ContentType  `json:"type"`
	CrawledFrom   Jurisdiction `json:"crawledFrom"`
	CrawledURL    string       `json:"crawledUrl"`
	SubmitTipLink string       `json:"submitTipLink,omitempty"`

	Wanted  *WantedPerson  `json:"wanted,omitempty"`
	Missing *MissingPerson `json:"missing,omitempty"`
	News    *NewsItem      `json:"news,omitempty"`
}

// NewWanted starts a wanted draft for the given notice URL. The notice page
// doubles as the tip submission link unless an adapter overrides it.
func NewWanted(from Jurisdiction, link string) *DraftRecord {
	return &DraftRecord{
		Type:          ContentWanted,
		CrawledFrom:   from,
		CrawledURL:    link,
		SubmitTipLink: link,
		Wanted: &WantedPerson{
			IsUnknown:   true,
			Offenses:    []string{},
			Gender:      GenderUnknown,
			Nationality: DefaultNationality,
		},
	}
}

// NewMissing starts a missing-person draft for the given notice URL.
func NewMissing(from Jurisdiction, link string) *DraftRecord {
	return &DraftRecord{
		Type:          ContentMissing,
		CrawledFrom:   from,
		CrawledURL:    link,
		SubmitTipLink: link,
		Missing:       &MissingPerson{Gender: GenderUnknown},
	}
}

// NewNews starts a news draft. News briefs are identified by their link.
func NewNews(from Jurisdiction, link string) *DraftRecord {
	return &DraftRecord{
		Type:        ContentNews,
		CrawledFrom: from,
		CrawledURL:  link,
		News:        &NewsItem{Link: link},
	}
}

// Identifier returns the idempotency key of the record.
func (r *DraftRecord) Identifier() string {
	if r.News != nil && r.News.Link != "" {
		return r.News.Link
	}
	return r.CrawledURL
}

// Description returns the free-text body regardless of shape.
func (r *DraftRecord) Description() string {
	switch {
	case r.Wanted != nil:
		return r.Wanted.Description
	case r.Missing != nil:
		return r.Missing.Description
	case r.News != nil:
		return r.News.Description
	}
	return ""
}
