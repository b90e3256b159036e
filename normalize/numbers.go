package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/fahndung/recency"
)

var (
	firstDigits = regexp.MustCompile(`\d+`)
	metres      = regexp.MustCompile(`(\d)[,.](\d{1,2})\s*m\b`)
)

// FirstInt returns the first run of digits in s, so "ca. 178 cm" yields 178.
// It returns nil when s contains no digits.
func FirstInt(s string) *int {
	m := firstDigits.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// Height reads a body height in centimetres. "1,78 m" is converted from
// metres, and a height of 0 means not stated.
func Height(s string) *int {
	if m := metres.FindStringSubmatch(s); m != nil {
		cm, _ := strconv.Atoi(m[1] + (m[2] + "0")[:2])
		return &cm
	}
	h := FirstInt(s)
	if h == nil || *h == 0 {
		return nil
	}
	return h
}

// AgeAt returns the completed years between birth and now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeFromBirthDate handles fields that carry either a birth date or a plain
// age: "04.07.1990" is converted relative to now, "34 Jahre" is taken as is.
func AgeFromBirthDate(raw string, now time.Time) *int {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ".") {
		birth, err := recency.DotDate.Parse(raw)
		if err == nil {
			age := AgeAt(birth, now)
			if age < 0 {
				return nil
			}
			return &age
		}
	}
	return FirstInt(raw)
}
