// Package recommend ranks the signals a page or domain should improve.
package recommend

import (
	"slices"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/scoring"
)

// Action tags.
const (
	ActionMissing          = "Missing"
	ActionNeedsImprovement = "Needs Improvement"
)

// Priority tiers by signal weight.
const (
	TierHigh   = "High"
	TierMedium = "Medium"
	TierLow    = "Low"
)

// Recommendation is one improvement for an applicable, under-rated signal.
type Recommendation struct {
	Signal catalog.Signal `json:"signal"`
	Rating model.Rating   `json:"rating"`
	Action string         `json:"action"`
	Text   string         `json:"text"`
	// Required is set when the page intent is listed explicitly by the signal.
	Required bool `json:"required"`
}

// Tier returns the priority tier of the recommendation.
func (r Recommendation) Tier() string {
	return TierOf(r.Signal.Weight)
}

// TierOf maps a signal weight onto its tier.
func TierOf(weight int) string {
	switch {
	case weight >= 3:
		return TierHigh
	case weight == 2:
		return TierMedium
	}
	return TierLow
}

// Rank lists a recommendation for every applicable signal of cat rated 0 or 1.
//
// Required signals come first, then heavier signals. Remaining ties keep
// catalog order. Unscored (-1) and absent signals are never recommended.
func Rank(cat *catalog.Catalog, ratings model.Ratings, intent model.Intent) ([]Recommendation, error) {
	if err := cat.Check(ratings); err != nil {
		return nil, err
	}
	if err := ratings.Validate(); err != nil {
		return nil, err
	}

	var out []Recommendation
	for _, s := range cat.Signals() {
		if !scoring.Resolve(s, intent).Applies {
			continue
		}
		r, ok := ratings[s.ID]
		if !ok || !r.Scored() || r >= model.MaxRating {
			continue
		}
		action := ActionNeedsImprovement
		if r == model.RatingMissing {
			action = ActionMissing
		}
		text, _ := cat.Remediation(s.ID)
		out = append(out, Recommendation{
			Signal:   s,
			Rating:   r,
			Action:   action,
			Text:     text,
			Required: s.Lists(intent),
		})
	}

	slices.SortStableFunc(out, func(a, b Recommendation) int {
		if a.Required != b.Required {
			if a.Required {
				return -1
			}
			return 1
		}
		return b.Signal.Weight - a.Signal.Weight
	})
	return out, nil
}

// Tiers buckets ranked recommendations by weight, keeping their order.
type Tiers struct {
	High   []Recommendation `json:"high"`
	Medium []Recommendation `json:"medium"`
	Low    []Recommendation `json:"low"`
}

// Bucket splits recs into priority tiers.
func Bucket(recs []Recommendation) Tiers {
	var t Tiers
	for _, r := range recs {
		switch r.Tier() {
		case TierHigh:
			t.High = append(t.High, r)
		case TierMedium:
			t.Medium = append(t.Medium, r)
		default:
			t.Low = append(t.Low, r)
		}
	}
	return t
}

// Top returns at most n leading recommendations.
func Top(recs []Recommendation, n int) []Recommendation {
	if n < 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}

// Filter keeps the recommendations with the given action.
func Filter(recs []Recommendation, action string) []Recommendation {
	var out []Recommendation
	for _, r := range recs {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}
