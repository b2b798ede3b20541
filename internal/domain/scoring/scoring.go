// Package scoring turns sparse signal ratings into E-E-A-T concept percentages.
//
// Every function here is pure: inputs are never mutated and no state is kept,
// so callers may score pages concurrently without coordination.
package scoring

import (
	"math"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
)

// Score labels.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelNeedsWork = "Needs Work"
	LabelPoor      = "Poor"
)

// Label thresholds.
const (
	excellentFrom = 80
	goodFrom      = 60
	needsWorkFrom = 40
)

// Applicability is the result of resolving a signal against a page intent.
type Applicability struct {
	Applies              bool `json:"applies"`
	RequiresManualReview bool `json:"requires_manual_review"`
}

// Resolve decides whether s is scored for a page of the given intent.
// An unknown intent applies every signal.
func Resolve(s catalog.Signal, intent model.Intent) Applicability {
	applies := s.AllIntents() || intent == model.IntentUnknown || s.Lists(intent)
	return Applicability{
		Applies:              applies,
		RequiresManualReview: s.ManualCheck,
	}
}

// Breakdown holds per-concept percentages and their unweighted mean.
type Breakdown struct {
	Concepts map[model.Concept]int `json:"concepts"`
	// Keys lists the scored concepts in presentation order.
	Keys    []model.Concept `json:"keys"`
	Overall int             `json:"overall"`
}

// Get returns the percentage of concept c, zero when c is not scored.
func (b Breakdown) Get(c model.Concept) int {
	return b.Concepts[c]
}

// Label returns the band of the overall percentage.
func (b Breakdown) Label() string {
	return Label(b.Overall)
}

func emptyBreakdown(keys []model.Concept) Breakdown {
	b := Breakdown{
		Concepts: make(map[model.Concept]int, len(keys)),
		Keys:     append([]model.Concept(nil), keys...),
	}
	for _, k := range keys {
		b.Concepts[k] = 0
	}
	return b
}

type tally struct {
	num int
	den int
}

// Aggregate scores page ratings for intent over every signal of cat.
//
// Non-applicable, unscored (-1) and absent signals are left out of both the
// numerator and the denominator. A concept with nothing to count scores 0.
// Ratings naming ids outside cat fail with *catalog.UnknownSignalError and
// out-of-range values with *model.InvalidRatingError.
func Aggregate(cat *catalog.Catalog, ratings model.Ratings, intent model.Intent) (Breakdown, error) {
	return aggregate(cat, ratings, intent, model.Concepts)
}

func aggregate(cat *catalog.Catalog, ratings model.Ratings, intent model.Intent, keys []model.Concept) (Breakdown, error) {
	if err := cat.Check(ratings); err != nil {
		return Breakdown{}, err
	}
	if err := ratings.Validate(); err != nil {
		return Breakdown{}, err
	}

	tallies := make(map[model.Concept]*tally, len(keys))
	for _, k := range keys {
		tallies[k] = &tally{}
	}
	for _, s := range cat.Signals() {
		t, counted := tallies[s.Concept]
		if !counted || !Resolve(s, intent).Applies {
			continue
		}
		r, ok := ratings[s.ID]
		if !ok || !r.Scored() {
			continue
		}
		t.num += int(r) * s.Weight
		t.den += int(model.MaxRating) * s.Weight
	}

	b := emptyBreakdown(keys)
	sum := 0
	for _, k := range keys {
		t := tallies[k]
		if t.den > 0 {
			b.Concepts[k] = percent(t.num, t.den)
		}
		sum += b.Concepts[k]
	}
	if len(keys) > 0 {
		b.Overall = roundDiv(float64(sum), float64(len(keys)))
	}
	return b, nil
}

// MergeDomain max-merges brand ratings observed on several pages. Unscored
// and absent values are skipped, so an id no page rated stays absent.
func MergeDomain(pages ...model.Ratings) model.Ratings {
	out := model.Ratings{}
	for _, p := range pages {
		for id, r := range p {
			if !r.Scored() {
				continue
			}
			if cur, ok := out[id]; !ok || r > cur {
				out[id] = r
			}
		}
	}
	return out
}

// ScoreDomain scores site-wide ratings over the domain-scope groups of cat.
// Absent ratings count as missing unless the signal needs a manual check, in
// which case it stays unscored. Only Authority and Trust are scored.
func ScoreDomain(cat *catalog.Catalog, ratings model.Ratings) (Breakdown, error) {
	dom := cat.Scope(catalog.ScopeDomain)
	return aggregate(dom, FillDomain(dom, ratings), model.IntentUnknown, model.DomainConcepts)
}

// FillDomain returns a copy of ratings where every domain-scope signal of cat
// without a value is marked missing, or unscored for manual-check signals.
func FillDomain(cat *catalog.Catalog, ratings model.Ratings) model.Ratings {
	filled := ratings.Clone()
	for _, g := range cat.Groups() {
		if g.Scope != catalog.ScopeDomain {
			continue
		}
		for _, s := range g.Signals {
			if _, ok := filled[s.ID]; ok {
				continue
			}
			if s.ManualCheck {
				filled[s.ID] = model.RatingUnscored
			} else {
				filled[s.ID] = model.RatingMissing
			}
		}
	}
	return filled
}

// AggregateDomain merges the brand ratings of pages and scores the result.
func AggregateDomain(cat *catalog.Catalog, pages []model.Ratings) (Breakdown, error) {
	return ScoreDomain(cat, MergeDomain(pages...))
}

// Average returns the per-concept rounded mean of bs. The overall value is the
// mean of the individual overall percentages.
func Average(bs []Breakdown) Breakdown {
	if len(bs) == 0 {
		return emptyBreakdown(model.Concepts)
	}
	out := emptyBreakdown(bs[0].Keys)
	n := float64(len(bs))
	overall := 0
	for _, k := range out.Keys {
		sum := 0
		for _, b := range bs {
			sum += b.Concepts[k]
		}
		out.Concepts[k] = roundDiv(float64(sum), n)
	}
	for _, b := range bs {
		overall += b.Overall
	}
	out.Overall = roundDiv(float64(overall), n)
	return out
}

// Label maps a percentage onto its presentation band.
func Label(score int) string {
	switch {
	case score >= excellentFrom:
		return LabelExcellent
	case score >= goodFrom:
		return LabelGood
	case score >= needsWorkFrom:
		return LabelNeedsWork
	}
	return LabelPoor
}

func percent(num, den int) int {
	return roundDiv(float64(100*num), float64(den))
}

func roundDiv(a, b float64) int {
	return int(math.Round(a / b))
}
