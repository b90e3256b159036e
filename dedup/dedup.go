// Package dedup answers "has this item been ingested before" for one source.
package dedup

import (
	"strings"

	"github.com/use-agent/fahndung/simhash"
)

// Filter is an immutable snapshot of the identifiers already stored for one
// jurisdiction and content type. It is loaded once before an adapter runs and
// is not refreshed while the adapter paginates.
type Filter struct {
	known map[string]struct{}
}

// New builds a filter from the identifiers returned by the store.
func New(identifiers []string) *Filter {
	known := make(map[string]struct{}, len(identifiers))
	for _, id := range identifiers {
		if id == "" {
			continue
		}
		known[id] = struct{}{}
	}
	return &Filter{known: known}
}

// Empty returns a filter that knows nothing.
func Empty() *Filter {
	return &Filter{known: map[string]struct{}{}}
}

// IsKnown reports whether id was already persisted when the snapshot was taken.
// A nil filter knows nothing.
func (f *Filter) IsKnown(id string) bool {
	if f == nil {
		return false
	}
	_, ok := f.known[id]
	return ok
}

// Len returns the snapshot size.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.known)
}

// FingerprintID builds the identifier of a notice that has no URL of its
// own: the listing URL plus the fingerprint of the notice text.
func FingerprintID(listing, text string) string {
	return listing + "#" + simhash.Key(simhash.Fingerprint(text))
}

// IsKnownNear is IsKnown for fingerprint identifiers. It also matches stored
// identifiers of the same listing whose fingerprint lies within threshold
// bits, so a notice whose text was lightly edited is not ingested again.
func (f *Filter) IsKnownNear(id string, threshold int) bool {
	if f == nil {
		return false
	}
	if f.IsKnown(id) {
		return true
	}
	listing, key, ok := strings.Cut(id, "#")
	if !ok {
		return false
	}
	fp, ok := simhash.ParseKey(key)
	if !ok {
		return false
	}
	prefix := listing + "#"
	for known := range f.known {
		rest, found := strings.CutPrefix(known, prefix)
		if !found {
			continue
		}
		if other, ok := simhash.ParseKey(rest); ok && simhash.Similar(fp, other, threshold) {
			return true
		}
	}
	return false
}
