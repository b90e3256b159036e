// Package simhash fingerprints notice texts. Sources that list several
// notices under one URL have no per-notice link, so the fingerprint of the
// notice text stands in for it.
package simhash

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strconv"
	"strings"
	"unicode"
)

// Fingerprint computes a 64-bit SimHash of the given text.
// Uses FNV-64a hash on lower-cased word bigrams with bit vector accumulation,
// so punctuation, case and whitespace changes do not move the fingerprint.
func Fingerprint(text string) uint64 {
	words := tokens(text)
	if len(words) == 0 {
		return 0
	}
	features := makeShingles(words, 2)
	if len(features) == 0 {
		features = words
	}

	var vector [64]int

	for _, f := range features {
		h := fnv.New64a()
		h.Write([]byte(f))
		hash := h.Sum64()

		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}

	return fingerprint
}

// Distance returns the Hamming distance between two SimHash fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar returns true if the Hamming distance between two fingerprints
// is less than or equal to the threshold.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// Key renders a fingerprint as the fixed-width hex string used in
// identifiers.
func Key(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// ParseKey is the inverse of Key.
func ParseKey(s string) (uint64, bool) {
	if len(s) != 16 {
		return 0, false
	}
	fp, err := strconv.ParseUint(s, 16, 64)
	return fp, err == nil
}

func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// makeShingles creates n-gram shingles from a slice of tokens.
func makeShingles(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}

	shingles := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		shingles = append(shingles, strings.Join(tokens[i:i+n], "_"))
	}
	return shingles
}
