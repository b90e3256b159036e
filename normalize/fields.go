package normalize

import (
	"strings"
	"time"

	"github.com/use-agent/fahndung/models"
)

// Field is a canonical person attribute that a labelled value maps to.
type Field int

const (
	FieldUnknown Field = iota
	FieldLocation
	FieldDate
	FieldHeight
	FieldAge
	FieldBirthDate
	FieldGender
	FieldLastName
	FieldFirstName
	FieldOffenses
	FieldAppearance
	FieldNationality
	FieldBounty
)

// labels is keyed by the lower-cased label without a trailing colon.
var labels = map[string]Field{
	"tatort":                 FieldLocation,
	"ort":                    FieldLocation,
	"letzter aufenthaltsort": FieldLocation,
	"vermisst seit":          FieldDate,
	"tatzeit":                FieldDate,
	"zeit":                   FieldDate,
	"größe":                  FieldHeight,
	"grösse":                 FieldHeight,
	"groesse":                FieldHeight,
	"alter":                  FieldAge,
	"geschätztes alter":      FieldAge,
	"geburtsdatum":           FieldBirthDate,
	"geschlecht":             FieldGender,
	"name":                   FieldLastName,
	"nachname":               FieldLastName,
	"vorname":                FieldFirstName,
	"delikt / grund":         FieldOffenses,
	"delikt":                 FieldOffenses,
	"besondere merkmale":     FieldAppearance,
	"staatsangehörigkeit":    FieldNationality,
	"belohnung":              FieldBounty,
}

// LookupLabel resolves a label as printed on a detail page.
func LookupLabel(label string) (Field, bool) {
	key := strings.ToLower(Line(label))
	key = strings.TrimSuffix(key, ":")
	f, ok := labels[strings.TrimSpace(key)]
	return f, ok
}

// Normalizer turns raw values scraped from a detail page into canonical
// record fields.
type Normalizer struct {
	Now func() time.Time
}

// New returns a Normalizer using the wall clock.
func New() *Normalizer {
	return &Normalizer{Now: time.Now}
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// Apply stores one labelled value on the record and reports whether the label
// was recognised. Values for fields the record shape lacks are ignored.
func (n *Normalizer) Apply(rec *models.DraftRecord, label, value string) bool {
	field, ok := LookupLabel(label)
	if !ok {
		return false
	}
	value = Line(value)
	switch {
	case rec.Wanted != nil:
		n.applyWanted(rec.Wanted, field, value)
	case rec.Missing != nil:
		n.applyMissing(rec.Missing, field, value)
	default:
		return false
	}
	return true
}

func (n *Normalizer) applyWanted(w *models.WantedPerson, f Field, v string) {
	switch f {
	case FieldLocation:
		w.CrimeSceneLocation = v
	case FieldDate:
		w.CrimeSceneDateCrawled = v
	case FieldHeight:
		w.Height = Height(v)
	case FieldAge:
		w.Age = FirstInt(v)
	case FieldBirthDate:
		w.Age = AgeFromBirthDate(v, n.now())
	case FieldGender:
		w.Gender = Gender(v)
	case FieldLastName:
		w.LastName = v
		w.IsUnknown = v == ""
	case FieldFirstName:
		w.FirstName = v
	case FieldOffenses:
		w.Offenses = SplitList(v, ",")
	case FieldAppearance:
		w.Appearance = SplitList(v, ",")
	case FieldNationality:
		if v != "" {
			w.Nationality = v
		}
	case FieldBounty:
		if b := bounty(v); b != nil {
			w.Bounty = *b
		}
	}
}

func (n *Normalizer) applyMissing(m *models.MissingPerson, f Field, v string) {
	switch f {
	case FieldLocation:
		m.LastSeenLocation = v
	case FieldDate:
		m.LastSeenDateCrawled = v
	case FieldHeight:
		m.Height = Height(v)
	case FieldAge:
		m.Age = FirstInt(v)
	case FieldBirthDate:
		m.Age = AgeFromBirthDate(v, n.now())
	case FieldGender:
		m.Gender = Gender(v)
	case FieldLastName:
		m.LastName = v
	case FieldFirstName:
		m.FirstName = v
	case FieldAppearance:
		m.Appearance = SplitList(v, ",")
	}
}

// bounty reads amounts like "5.000 Euro" where the dot groups thousands.
func bounty(v string) *int {
	return FirstInt(strings.ReplaceAll(v, ".", ""))
}
