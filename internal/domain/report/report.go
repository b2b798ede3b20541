// Package report derives flat, catalog-ordered rows and summaries from pages
// and domain records for export and display.
package report

import (
	"time"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/recommend"
	"github.com/okian/eeat/internal/domain/review"
	"github.com/okian/eeat/internal/domain/scoring"
)

// StatusNA marks a signal that does not apply to the page intent.
const StatusNA = "N/A"

// DefaultTop is the number of recommendations kept in summaries.
const DefaultTop = 3

// Row is one signal of a page or domain record.
type Row struct {
	Group       string        `json:"group"`
	SignalID    string        `json:"signal_id"`
	Label       string        `json:"label"`
	Concept     model.Concept `json:"concept"`
	Weight      int           `json:"weight"`
	Rating      model.Rating  `json:"rating"`
	Status      string        `json:"status"`
	Applicable  bool          `json:"applicable"`
	ManualCheck bool          `json:"manual_check"`
	// Recommendation is set for applicable signals rated 0 or 1.
	Recommendation string `json:"recommendation,omitempty"`
}

// PageRows lists the page-scope signals of cat for p in catalog order.
// Signals without a rating are reported as needing review.
func PageRows(cat *catalog.Catalog, p model.Page) []Row {
	return rows(cat, catalog.ScopePage, p.Ratings, p.Intent)
}

// DomainRows lists the domain-scope signals of cat in catalog order.
// Absent ratings count as missing, as they do for the domain score.
func DomainRows(cat *catalog.Catalog, d model.Domain) []Row {
	return rows(cat, catalog.ScopeDomain, scoring.FillDomain(cat, d.Effective()), model.IntentUnknown)
}

func rows(cat *catalog.Catalog, scope catalog.Scope, ratings model.Ratings, intent model.Intent) []Row {
	var out []Row
	for _, g := range cat.Groups() {
		if g.Scope != scope {
			continue
		}
		for _, s := range g.Signals {
			r, ok := ratings[s.ID]
			if !ok {
				r = model.RatingUnscored
			}
			a := scoring.Resolve(s, intent)
			row := Row{
				Group:       g.ID,
				SignalID:    s.ID,
				Label:       s.Label,
				Concept:     s.Concept,
				Weight:      s.Weight,
				Rating:      r,
				Status:      r.String(),
				Applicable:  a.Applies,
				ManualCheck: a.RequiresManualReview,
			}
			if !a.Applies {
				row.Status = StatusNA
			} else if r == model.RatingMissing || r == model.RatingPartial {
				row.Recommendation = s.Remediation
			}
			out = append(out, row)
		}
	}
	return out
}

// PageSummary is the scored view of one page.
type PageSummary struct {
	PageID          int                        `json:"page_id"`
	URL             string                     `json:"url"`
	Status          model.Status               `json:"status"`
	Error           string                     `json:"error,omitempty"`
	Intent          model.Intent               `json:"intent"`
	YMYL            model.YMYL                 `json:"ymyl"`
	Harmful         bool                       `json:"harmful"`
	Scores          scoring.Breakdown          `json:"scores"`
	Label           string                     `json:"label"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// SummarizePage scores p and keeps its top recommendations. Pages that did
// not complete are returned with empty scores.
func SummarizePage(cat *catalog.Catalog, p model.Page, top int) (PageSummary, error) {
	s := PageSummary{
		PageID:  p.ID,
		URL:     p.URL,
		Status:  p.Status,
		Error:   p.Error,
		Intent:  p.Intent,
		YMYL:    p.YMYL,
		Harmful: p.Harmful,
		Scores:  scoring.Average(nil),
	}
	if p.Status != model.StatusComplete {
		s.Label = scoring.Label(0)
		return s, nil
	}
	pageCat := cat.Scope(catalog.ScopePage)
	b, err := scoring.Aggregate(pageCat, p.Ratings, p.Intent)
	if err != nil {
		return PageSummary{}, err
	}
	recs, err := recommend.Rank(pageCat, p.Ratings, p.Intent)
	if err != nil {
		return PageSummary{}, err
	}
	s.Scores = b
	s.Label = b.Label()
	s.Recommendations = recommend.Top(recs, top)
	return s, nil
}

// DomainSummary is the scored view of the site-wide record.
type DomainSummary struct {
	Host            string                     `json:"host"`
	Started         bool                       `json:"started"`
	Contributors    int                        `json:"contributors"`
	Scores          scoring.Breakdown          `json:"scores"`
	Label           string                     `json:"label"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// SummarizeDomain scores the effective domain ratings of b.
func SummarizeDomain(cat *catalog.Catalog, b *model.Batch) (DomainSummary, error) {
	eff := b.Domain.Effective()
	scores, err := scoring.ScoreDomain(cat, eff)
	if err != nil {
		return DomainSummary{}, err
	}
	dom := cat.Scope(catalog.ScopeDomain)
	recs, err := recommend.Rank(dom, scoring.FillDomain(dom, eff), model.IntentUnknown)
	if err != nil {
		return DomainSummary{}, err
	}
	return DomainSummary{
		Host:            b.Host,
		Started:         b.Domain.Started(),
		Contributors:    b.Domain.Contributors,
		Scores:          scores,
		Label:           scores.Label(),
		Recommendations: recs,
	}, nil
}

// Executive is the batch-wide summary report.
type Executive struct {
	BatchID        string               `json:"batch_id"`
	Host           string               `json:"host"`
	GeneratedAt    time.Time            `json:"generated_at"`
	Total          int                  `json:"total"`
	Counts         map[model.Status]int `json:"counts"`
	Domain         DomainSummary        `json:"domain"`
	Average        scoring.Breakdown    `json:"average"`
	PendingReviews int                  `json:"pending_reviews"`
	Pages          []PageSummary        `json:"pages"`
}

// Summarize builds the executive summary of b. Averages cover completed pages.
func Summarize(cat *catalog.Catalog, b *model.Batch, top int, now time.Time) (Executive, error) {
	dom, err := SummarizeDomain(cat, b)
	if err != nil {
		return Executive{}, err
	}
	e := Executive{
		BatchID:     b.ID,
		Host:        b.Host,
		GeneratedAt: now,
		Total:       len(b.Pages),
		Counts:      b.Counts(),
		Domain:      dom,
		Pages:       make([]PageSummary, 0, len(b.Pages)),
	}
	var done []scoring.Breakdown
	for _, p := range b.Pages {
		ps, err := SummarizePage(cat, p, top)
		if err != nil {
			return Executive{}, err
		}
		if p.Status == model.StatusComplete {
			done = append(done, ps.Scores)
		}
		e.Pages = append(e.Pages, ps)
	}
	e.Average = scoring.Average(done)
	e.PendingReviews = review.Pending(review.Items(cat, b.Pages, b.Domain))
	return e, nil
}
