// Package transcript repairs noisy speech-to-text phrases against the menu
// vocabulary before catalog matching.
//
// The repair is phonetic spelling correction, not understanding: a phrase
// like "orignal wigns" is rewritten to "Original Wings" when it sounds like
// a known menu term, and left untouched otherwise. Correction happens in two
// stages:
//
//  1. Double Metaphone codes are computed for every word of the phrase and
//     of each vocabulary term; any code overlap makes the term a phonetic
//     candidate.
//  2. Phonetic candidates are ranked by Jaro-Winkler similarity and the
//     best one is taken if it clears the phonetic threshold. When no
//     phonetic candidate exists, a stricter pure Jaro-Winkler pass over the
//     whole vocabulary acts as a fallback.
//
// The lexical scorer in internal/match remains the sole source of match
// confidence; correction only changes its input text.
//
// A Corrector is read-only after construction and safe for concurrent use.
package transcript

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/ordervox/ordervox/internal/menu"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched term to replace the phrase. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(c *Corrector) {
		c.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic candidate is found and the corrector falls back to pure string
// similarity. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(c *Corrector) {
		c.fuzzyThreshold = threshold
	}
}

// Corrector repairs spoken phrases against a term vocabulary.
type Corrector struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a [Corrector] configured with the supplied options.
func New(opts ...Option) *Corrector {
	c := &Corrector{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct returns the vocabulary term that phrase most plausibly was, along
// with the similarity score. When no term qualifies, corrected equals phrase
// unchanged, score is 0, and ok is false. An exact (case-insensitive) hit is
// also reported as ok false: there is nothing to repair.
func (c *Corrector) Correct(phrase string, vocabulary []string) (corrected string, score float64, ok bool) {
	trimmed := strings.TrimSpace(phrase)
	if trimmed == "" || len(vocabulary) == 0 {
		return phrase, 0, false
	}

	phraseLower := strings.ToLower(trimmed)
	phraseTokens := strings.Fields(phraseLower)
	phraseCodes := metaphoneCodes(phraseTokens)

	var (
		bestTerm     string
		bestScore    float64
		bestPhonetic bool
	)

	for _, term := range vocabulary {
		termLower := strings.ToLower(strings.TrimSpace(term))
		if termLower == "" {
			continue
		}
		if termLower == phraseLower {
			return phrase, 1, false
		}

		termTokens := strings.Fields(termLower)
		jw := jaroWinklerScore(phraseTokens, termTokens, phraseLower, termLower)

		if overlaps(phraseCodes, metaphoneCodes(termTokens)) {
			if jw >= c.phoneticThreshold && (!bestPhonetic || jw > bestScore) {
				bestTerm, bestScore, bestPhonetic = term, jw, true
			}
		} else if !bestPhonetic && jw >= c.fuzzyThreshold && jw > bestScore {
			bestTerm, bestScore = term, jw
		}
	}

	if bestTerm == "" {
		return phrase, 0, false
	}
	return bestTerm, bestScore, true
}

// ItemVocabulary collects every available item name and alias from m.
func ItemVocabulary(m *menu.Menu) []string {
	var out []string
	for _, it := range m.Items {
		if !it.Available {
			continue
		}
		out = append(out, it.Name)
		out = append(out, it.Aliases...)
	}
	return out
}

// ModifierVocabulary collects modifier names and aliases from the groups
// referenced by groupIDs.
func ModifierVocabulary(m *menu.Menu, groupIDs []string) []string {
	var out []string
	for _, gid := range groupIDs {
		g, ok := m.Group(gid)
		if !ok {
			continue
		}
		for _, mod := range g.Modifiers {
			out = append(out, mod.Name)
			out = append(out, mod.Aliases...)
		}
	}
	return out
}

// metaphoneCodes returns the union of Double Metaphone codes for the given
// tokens, excluding empty codes.
func metaphoneCodes(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		primary, secondary := matchr.DoubleMetaphone(t)
		if primary != "" {
			codes[primary] = struct{}{}
		}
		if secondary != "" {
			codes[secondary] = struct{}{}
		}
	}
	return codes
}

// overlaps reports whether the two code sets share at least one code.
func overlaps(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// jaroWinklerScore computes the highest Jaro-Winkler similarity between the
// phrase and a vocabulary term across three views: the full strings, the
// space-stripped strings, and the best pairwise token score. The multi-view
// comparison keeps multi-word terms ("honey garlic") matchable when the
// transcriber merged or split words.
func jaroWinklerScore(phraseTokens, termTokens []string, phraseFull, termFull string) float64 {
	score := matchr.JaroWinkler(phraseFull, termFull, false)

	if len(phraseTokens) > 1 || len(termTokens) > 1 {
		joined1 := strings.Join(phraseTokens, "")
		joined2 := strings.Join(termTokens, "")
		if s := matchr.JaroWinkler(joined1, joined2, false); s > score {
			score = s
		}
	}

	for _, pt := range phraseTokens {
		for _, tt := range termTokens {
			if s := matchr.JaroWinkler(pt, tt, false); s > score {
				score = s
			}
		}
	}

	return score
}
