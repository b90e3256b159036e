package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	inlineSpace    = regexp.MustCompile(`[ \t\p{Zs}]+`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
	runningNumber  = regexp.MustCompile(`Nr\.\s*\d+\s*`)
	teaserEllipsis = "..."
)

// Clean collapses horizontal whitespace, trims every line and squeezes runs of
// empty lines down to one.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(inlineSpace.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Line reduces s to a single cleaned line.
func Line(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripRunningNumber drops the "Nr. 1234" notice number Berlin puts in front
// of every description and returns what follows it.
func StripRunningNumber(s string) string {
	loc := runningNumber.FindStringIndex(s)
	if loc == nil {
		return s
	}
	rest := strings.TrimSpace(s[loc[1]:])
	if rest == "" {
		return s
	}
	return rest
}

// Teaser shortens s to n runes and marks the cut with an ellipsis.
func Teaser(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(Truncate(s, n)) + teaserEllipsis
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// SplitList splits a comma separated field such as "Raub, Körperverletzung"
// and drops empty entries.
func SplitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := Line(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// After returns the text following marker, or "" when marker is absent.
// "Ereignisort: Mitte" with marker "Ereignisort:" yields "Mitte".
func After(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	return Line(s[i+len(marker):])
}
