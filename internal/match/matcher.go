package match

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/ordervox/ordervox/internal/menu"
)

const (
	// itemThreshold is the minimum similarity for an item or modifier
	// candidate to be considered at all. A low bar: noisy transcriptions
	// still clear it while unrelated words do not.
	itemThreshold = 0.3

	// modifierAcceptThreshold is the minimum confidence for a phrase to be
	// assigned to a modifier group in [Matcher.FindModifiers]. Modifier
	// vocabularies are short, so collisions are rare and the bar can sit
	// lower than a certain match.
	modifierAcceptThreshold = 0.5

	// maxAlternatives caps how many runner-up candidates a Find result
	// carries.
	maxAlternatives = 3
)

// Matcher resolves spoken phrases against a [menu.Menu] snapshot. It never
// mutates the menu and is safe for concurrent use; the snapshot can be
// swapped atomically with [Matcher.SetMenu] when the catalog is reloaded.
type Matcher struct {
	menu atomic.Pointer[menu.Menu]
}

// New returns a [Matcher] over the given menu snapshot. The menu must not be
// mutated while the matcher is in use.
func New(m *menu.Menu) *Matcher {
	mt := &Matcher{}
	mt.menu.Store(m)
	return mt
}

// Menu returns the snapshot this matcher currently resolves against.
func (m *Matcher) Menu() *menu.Menu { return m.menu.Load() }

// SetMenu swaps the snapshot this matcher resolves against. In-flight calls
// keep the snapshot they started with.
func (m *Matcher) SetMenu(nm *menu.Menu) { m.menu.Store(nm) }

// ItemCandidate is one scored menu item.
type ItemCandidate struct {
	Item  menu.Item
	Score float64
}

// ItemResult is the outcome of [Matcher.FindItem].
type ItemResult struct {
	// Match is the best-scoring item, or nil when no candidate cleared the
	// acceptance threshold.
	Match *menu.Item

	// Confidence is the match's similarity score; 0 when Match is nil.
	Confidence float64

	// Alternatives holds up to three runner-up candidates in descending
	// score order.
	Alternatives []ItemCandidate
}

// FindItem resolves spokenText to the best-matching available menu item.
//
// Every available item is scored against its name and each alias, keeping
// the item's best score. Candidates scoring at or below 0.3 are discarded.
// The rest are ordered by descending score; ties keep menu order.
func (m *Matcher) FindItem(spokenText string) ItemResult {
	var candidates []ItemCandidate
	for _, it := range m.Menu().Items {
		if !it.Available {
			continue
		}
		score := bestScore(spokenText, it.Name, it.Aliases)
		if score <= itemThreshold {
			continue
		}
		candidates = append(candidates, ItemCandidate{Item: it, Score: score})
	}

	sortCandidatesDesc(candidates)

	if len(candidates) == 0 {
		return ItemResult{}
	}
	best := candidates[0]
	return ItemResult{
		Match:        &best.Item,
		Confidence:   best.Score,
		Alternatives: capAlternatives(candidates[1:]),
	}
}

// SizeCandidate is one scored item size.
type SizeCandidate struct {
	Size  menu.Size
	Score float64
}

// SizeResult is the outcome of [Matcher.FindSize].
type SizeResult struct {
	// Match is the best-scoring size. It is nil both when the item has no
	// sizes (Confidence 1, no size needed) and when the item has sizes but
	// spoken text produced no candidates.
	Match *menu.Size

	Confidence float64

	Alternatives []SizeCandidate
}

// FindSize resolves spokenText to one of item's sizes.
//
// An item without sizes yields a vacuous success: no match, confidence 1.
// Otherwise every size is scored against its name and aliases with no
// exclusion threshold: the best candidate is always returned, however weak.
func (m *Matcher) FindSize(spokenText string, item menu.Item) SizeResult {
	if len(item.Sizes) == 0 {
		return SizeResult{Confidence: 1}
	}

	candidates := make([]SizeCandidate, 0, len(item.Sizes))
	for _, s := range item.Sizes {
		candidates = append(candidates, SizeCandidate{
			Size:  s,
			Score: bestScore(spokenText, s.Name, s.Aliases),
		})
	}

	slices.SortStableFunc(candidates, func(a, b SizeCandidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	best := candidates[0]
	out := SizeResult{
		Match:      &best.Size,
		Confidence: best.Score,
	}
	rest := candidates[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	out.Alternatives = slices.Clone(rest)
	return out
}

// ModifierCandidate is one scored modifier within a group.
type ModifierCandidate struct {
	Modifier menu.Modifier
	Score    float64
}

// ModifierResult is the outcome of [Matcher.FindModifier].
type ModifierResult struct {
	Match        *menu.Modifier
	Confidence   float64
	Alternatives []ModifierCandidate
}

// FindModifier resolves spokenText within a single modifier group, using the
// same scoring and 0.3 exclusion threshold as [Matcher.FindItem]. An unknown
// groupID yields no match.
func (m *Matcher) FindModifier(spokenText, groupID string) ModifierResult {
	group, ok := m.Menu().Group(groupID)
	if !ok {
		return ModifierResult{}
	}

	var candidates []ModifierCandidate
	for _, mod := range group.Modifiers {
		score := bestScore(spokenText, mod.Name, mod.Aliases)
		if score <= itemThreshold {
			continue
		}
		candidates = append(candidates, ModifierCandidate{Modifier: mod, Score: score})
	}

	slices.SortStableFunc(candidates, func(a, b ModifierCandidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if len(candidates) == 0 {
		return ModifierResult{}
	}
	best := candidates[0]
	rest := candidates[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	return ModifierResult{
		Match:        &best.Modifier,
		Confidence:   best.Score,
		Alternatives: slices.Clone(rest),
	}
}

// ModifierSelection records one spoken phrase accepted into a group by
// [Matcher.FindModifiers].
type ModifierSelection struct {
	GroupID    string
	Modifier   menu.Modifier
	Confidence float64
}

// FindModifiers assigns each spoken phrase to the first group, in the
// caller-supplied group order, whose best modifier match exceeds 0.5.
//
// The assignment is first-fit, not best-fit: once a phrase clears the bar in
// a group, later groups are not tried even if they would score higher. A
// phrase that clears the bar in no group contributes nothing.
func (m *Matcher) FindModifiers(spokenTexts, groupIDs []string) []ModifierSelection {
	var out []ModifierSelection
	for _, phrase := range spokenTexts {
		for _, gid := range groupIDs {
			res := m.FindModifier(phrase, gid)
			if res.Match == nil || res.Confidence <= modifierAcceptThreshold {
				continue
			}
			out = append(out, ModifierSelection{
				GroupID:    gid,
				Modifier:   *res.Match,
				Confidence: res.Confidence,
			})
			break
		}
	}
	return out
}

// GroupByID returns the modifier group with the given ID from the matcher's
// menu.
func (m *Matcher) GroupByID(id string) (menu.ModifierGroup, bool) {
	return m.Menu().Group(id)
}

// ItemsByCategory returns all items whose category equals name
// case-insensitively, in menu order.
func (m *Matcher) ItemsByCategory(name string) []menu.Item {
	var out []menu.Item
	for _, it := range m.Menu().Items {
		if strings.EqualFold(it.Category, name) {
			out = append(out, it)
		}
	}
	return out
}

// bestScore returns the highest [Similarity] between spoken and the entity's
// name or any of its aliases.
func bestScore(spoken, name string, aliases []string) float64 {
	best := Similarity(spoken, name)
	for _, a := range aliases {
		if s := Similarity(spoken, a); s > best {
			best = s
		}
	}
	return best
}

// sortCandidatesDesc orders item candidates by descending score, preserving
// menu order on ties.
func sortCandidatesDesc(c []ItemCandidate) {
	slices.SortStableFunc(c, func(a, b ItemCandidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
}

// capAlternatives limits runner-up candidates to [maxAlternatives] entries.
func capAlternatives(rest []ItemCandidate) []ItemCandidate {
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	return slices.Clone(rest)
}
