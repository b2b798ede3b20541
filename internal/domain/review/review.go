// Package review lists the signals awaiting human verification.
package review

import (
	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/scoring"
)

// Entity kinds.
const (
	EntityDomain = "domain"
	EntityPage   = "page"
)

// Item is one manual-check signal of a page or of the domain.
type Item struct {
	Entity string         `json:"entity"`
	// PageID is nil for domain items.
	PageID *int           `json:"page_id,omitempty"`
	URL    string         `json:"url,omitempty"`
	Signal catalog.Signal `json:"signal"`
	// Rating is RatingUnscored when no value is recorded.
	Rating     model.Rating `json:"rating"`
	NeedsCheck bool         `json:"needs_check"`
}

// Items joins the manual-check signals of cat with the current ratings.
//
// Domain items are listed once the domain has a contributor; page items come
// from completed pages and only for signals that apply to the page intent.
// The result is computed from the inputs on every call.
func Items(cat *catalog.Catalog, pages []model.Page, domain model.Domain) []Item {
	var out []Item

	if domain.Started() || len(domain.Overrides) > 0 {
		eff := domain.Effective()
		for _, s := range cat.Scope(catalog.ScopeDomain).Signals() {
			if !s.ManualCheck {
				continue
			}
			out = append(out, item(EntityDomain, s, eff))
		}
	}

	pageCat := cat.Scope(catalog.ScopePage)
	for _, p := range pages {
		if p.Status != model.StatusComplete {
			continue
		}
		for _, s := range pageCat.Signals() {
			a := scoring.Resolve(s, p.Intent)
			if !a.RequiresManualReview || !a.Applies {
				continue
			}
			it := item(EntityPage, s, p.Ratings)
			id := p.ID
			it.PageID = &id
			it.URL = p.URL
			out = append(out, it)
		}
	}
	return out
}

func item(entity string, s catalog.Signal, ratings model.Ratings) Item {
	r, ok := ratings[s.ID]
	if !ok {
		r = model.RatingUnscored
	}
	return Item{
		Entity:     entity,
		Signal:     s,
		Rating:     r,
		NeedsCheck: !ok || r == model.RatingUnscored,
	}
}

// Pending counts the items that still need a check.
func Pending(items []Item) int {
	n := 0
	for _, it := range items {
		if it.NeedsCheck {
			n++
		}
	}
	return n
}
