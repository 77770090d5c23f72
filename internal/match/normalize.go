// Package match implements the lexical catalog matcher for spoken order
// text.
//
// Matching is deliberately simple: spoken phrases and catalog names are
// reduced to a canonical lowercase form and compared with exact-equality,
// substring, and word-set scoring ([Similarity]). There is no semantic
// understanding here; noisy transcriptions are tolerated through the low
// acceptance thresholds and, optionally, the phonetic repair stage in
// internal/transcript that runs before matching.
//
// A [Matcher] is read-only over its menu snapshot and safe for concurrent
// use.
package match

import "strings"

// Normalize reduces text to its canonical comparable form: lowercase, with
// every character outside [a-z0-9\s] removed, and surrounding whitespace
// trimmed.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Similarity scores how alike two strings are after normalization, in [0, 1].
//
//   - Equal normalized strings score 1.0.
//   - One containing the other as a substring scores 0.9.
//   - Otherwise the score is the Jaccard index of the two word sets.
//
// The function is symmetric in its arguments and has no side effects.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	if na == nb {
		return 1.0
	}

	// The substring rule only applies to non-empty strings; an empty side
	// falls through to the word-set comparison (and scores 0).
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return 0.9
	}

	return jaccard(strings.Fields(na), strings.Fields(nb))
}

// jaccard computes |A ∩ B| / |A ∪ B| over two word lists treated as sets.
// An empty union yields 0.
func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}

	union := make(map[string]struct{}, len(a)+len(b))
	for _, w := range a {
		union[w] = struct{}{}
	}
	intersection := 0
	seen := make(map[string]struct{}, len(b))
	for _, w := range b {
		union[w] = struct{}{}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if set[w] {
			intersection++
		}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}
