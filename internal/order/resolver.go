package order

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ordervox/ordervox/internal/match"
	"github.com/ordervox/ordervox/internal/observe"
	"github.com/ordervox/ordervox/internal/transcript"
)

// weakConfidenceThreshold is the item-match confidence below which a line
// still resolves but gets flagged for human confirmation. Likely
// mis-transcriptions land between this and the matcher's acceptance bar.
const weakConfidenceThreshold = 0.7

// ResolverOption is a functional option for configuring a [Resolver].
type ResolverOption func(*Resolver)

// WithCorrector enables phonetic transcript repair of spoken phrases before
// catalog matching. Errors and warnings still cite the caller's original
// words.
func WithCorrector(c *transcript.Corrector) ResolverOption {
	return func(r *Resolver) {
		r.corrector = c
	}
}

// WithResolverMetrics enables per-line resolution telemetry: resolve
// latency, match outcomes with confidence, and transcript repairs.
func WithResolverMetrics(m *observe.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// Resolver turns one [VoiceItem] into a [ResolvedItem] against a fixed menu
// snapshot. It is read-only and safe for concurrent use.
type Resolver struct {
	matcher   *match.Matcher
	corrector *transcript.Corrector
	metrics   *observe.Metrics
}

// NewResolver returns a [Resolver] over the given matcher.
func NewResolver(m *match.Matcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{matcher: m}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolution is the outcome of resolving a single voice line.
type Resolution struct {
	// Resolved is nil when the item name matched nothing in the catalog,
	// the only hard failure for a line.
	Resolved *ResolvedItem

	Errors   []string
	Warnings []string
}

// ResolveItem resolves one spoken order line.
//
// An unresolvable item name is the only hard failure; a weak match, an
// unmatched size phrase, or a missing required modifier group each degrade
// to a warning and the line still resolves and prices. Best effort is the
// point: flag for review rather than reject a hungry caller.
func (r *Resolver) ResolveItem(v VoiceItem) Resolution {
	if r.metrics != nil {
		defer func(start time.Time) {
			r.metrics.ResolveDuration.Record(context.Background(), time.Since(start).Seconds())
		}(time.Now())
	}

	var res Resolution

	itemText := v.ItemName
	if r.corrector != nil {
		if corrected, _, ok := r.corrector.Correct(itemText, transcript.ItemVocabulary(r.matcher.Menu())); ok {
			itemText = corrected
			r.recordCorrection()
		}
	}

	found := r.matcher.FindItem(itemText)
	if r.metrics != nil {
		r.metrics.RecordResolution(context.Background(), found.Match != nil, found.Confidence)
	}
	if found.Match == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Could not find menu item: %s", v.ItemName))
		return res
	}
	item := *found.Match

	if found.Confidence < weakConfidenceThreshold {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Low confidence match: %q was matched to %q (%d%% confidence)",
			v.ItemName, item.Name, int(math.Round(found.Confidence*100))))
	}

	quantity := v.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	resolved := &ResolvedItem{
		ItemID:              item.ID,
		ItemName:            item.Name,
		Quantity:            quantity,
		UnitPrice:           item.BasePrice,
		SpecialInstructions: v.SpecialInstructions,
	}

	// Size policy: a named size is matched; an unmatched or missing size
	// falls back to the item's first declared size. Only the unmatched
	// case warns; defaulting silently is the expected path.
	if len(item.Sizes) > 0 {
		size := item.Sizes[0]
		if v.Size != "" {
			sized := r.matcher.FindSize(v.Size, item)
			if sized.Match != nil && sized.Confidence > 0 {
				size = *sized.Match
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"Could not match size %q for %q; using %q", v.Size, item.Name, size.Name))
			}
		}
		resolved.SizeID = size.ID
		resolved.SizeName = size.Name
		resolved.UnitPrice += size.PriceAdjustment
	}

	satisfiedGroups := make(map[string]bool)
	if len(v.Modifiers) > 0 && len(item.ModifierGroupIDs) > 0 {
		phrases := v.Modifiers
		if r.corrector != nil {
			vocab := transcript.ModifierVocabulary(r.matcher.Menu(), item.ModifierGroupIDs)
			phrases = make([]string, len(v.Modifiers))
			for i, p := range v.Modifiers {
				phrases[i] = p
				if corrected, _, ok := r.corrector.Correct(p, vocab); ok {
					phrases[i] = corrected
					r.recordCorrection()
				}
			}
		}

		for _, sel := range r.matcher.FindModifiers(phrases, item.ModifierGroupIDs) {
			resolved.Modifiers = append(resolved.Modifiers, ResolvedModifier{
				ID:    sel.Modifier.ID,
				Name:  sel.Modifier.Name,
				Price: sel.Modifier.Price,
			})
			resolved.UnitPrice += sel.Modifier.Price
			satisfiedGroups[sel.GroupID] = true
		}
	}

	// Required groups produce warnings, never errors. Intentional: a voice
	// order with no flavour named should still reach the kitchen.
	for _, gid := range item.ModifierGroupIDs {
		group, ok := r.matcher.GroupByID(gid)
		if !ok || !group.Required {
			continue
		}
		if !satisfiedGroups[gid] {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"No selection from required group %q for %q", group.Name, item.Name))
		}
	}

	res.Resolved = resolved
	return res
}

func (r *Resolver) recordCorrection() {
	if r.metrics != nil {
		r.metrics.TranscriptCorrections.Add(context.Background(), 1)
	}
}
