// Package recency decides which discovered items are young enough to ingest
// and when a paginated listing has run into already-ingested territory.
package recency

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
)

// Field is one component of a date or time.
type Field int

const (
	Day Field = iota
	Month
	Year
	Hour
	Minute
)

// TimeFormat describes the time part following a date, e.g. "hh:mi".
type TimeFormat struct {
	Order     []Field
	Delimiter string
}

// Format describes how a source writes dates, e.g. dd.mm.yyyy.
// A nil *Format means the source uses a free-form or ISO-like value.
type Format struct {
	Order     []Field
	Delimiter string
	Time      *TimeFormat
}

var (
	// DotDate is dd.mm.yyyy, the most common German notation.
	DotDate = &Format{Order: []Field{Day, Month, Year}, Delimiter: "."}
	// SlashDate is dd/mm/yyyy.
	SlashDate = &Format{Order: []Field{Day, Month, Year}, Delimiter: "/"}
	// DotDateTime is dd.mm.yyyy hh:mi.
	DotDateTime = &Format{
		Order:     []Field{Day, Month, Year},
		Delimiter: ".",
		Time:      &TimeFormat{Order: []Field{Hour, Minute}, Delimiter: ":"},
	}
)

// ErrUnparseable is returned when a raw value does not match its format.
var ErrUnparseable = errors.New("recency: unparseable date")

// Location is the timezone every source publishes in.
var Location = mustLoad("Europe/Berlin")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

var (
	digitRun = regexp.MustCompile(`\d+`)

	datePatterns sync.Map // delimiter -> *regexp.Regexp
)

func datePattern(delim string) *regexp.Regexp {
	if re, ok := datePatterns.Load(delim); ok {
		return re.(*regexp.Regexp)
	}
	q := regexp.QuoteMeta(delim)
	re := regexp.MustCompile(`\d{1,2}` + q + `\d{1,2}` + q + `\d{2,4}`)
	datePatterns.Store(delim, re)
	return re
}

// Parse converts raw into an absolute time using the format. Surrounding text
// such as "Artikel vom" is ignored, two-digit years map into 2000-2099.
func (f *Format) Parse(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrUnparseable
	}
	if f == nil {
		t, err := dateparse.ParseIn(raw, Location)
		if err != nil {
			return time.Time{}, ErrUnparseable
		}
		return t, nil
	}

	datePart, timePart := locateDate(raw, f.Delimiter)
	if datePart == "" {
		return time.Time{}, ErrUnparseable
	}

	values := map[Field]int{}
	parts := strings.Split(datePart, f.Delimiter)
	if len(parts) != len(f.Order) {
		return time.Time{}, ErrUnparseable
	}
	for i, field := range f.Order {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return time.Time{}, ErrUnparseable
		}
		values[field] = n
	}

	if f.Time != nil && timePart != "" {
		tparts := strings.Split(timePart, f.Time.Delimiter)
		for i, field := range f.Time.Order {
			if i >= len(tparts) {
				break
			}
			n, err := strconv.Atoi(strings.TrimSpace(tparts[i]))
			if err != nil {
				return time.Time{}, ErrUnparseable
			}
			values[field] = n
		}
	}

	year := values[Year]
	if year < 100 {
		year += 2000
	}
	month, day := values[Month], values[Day]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrUnparseable
	}
	hour, minute := values[Hour], values[Minute]
	if hour > 23 || minute > 59 {
		return time.Time{}, ErrUnparseable
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, Location)
	if t.Day() != day {
		// time.Date normalises 31.02. into March.
		return time.Time{}, ErrUnparseable
	}
	return t, nil
}

// locateDate finds the first "n<d>n<d>n" run in raw and returns it together
// with whatever follows it.
func locateDate(raw, delim string) (string, string) {
	loc := datePattern(delim).FindStringIndex(raw)
	if loc == nil {
		return "", ""
	}
	rest := strings.TrimSpace(raw[loc[1]:])
	if m := digitRun.FindStringIndex(rest); m != nil {
		rest = strings.TrimSpace(rest[m[0]:])
		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			rest = rest[:i]
		}
	}
	return raw[loc[0]:loc[1]], rest
}
