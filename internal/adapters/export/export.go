// Package export writes page, domain and batch reports as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/recommend"
	"github.com/okian/eeat/internal/domain/report"
	"github.com/okian/eeat/internal/domain/scoring"
)

// Report kinds accepted by Write.
const (
	KindPage    = "page"
	KindPages   = "pages"
	KindSummary = "summary"
	KindDomain  = "domain"
)

// ErrUnknownKind is returned by Write for an unsupported report kind.
var ErrUnknownKind = errors.New("unknown export kind")

// DateTimeFormat is used for timestamps in exported files.
const DateTimeFormat = "2006-01-02 15:04:05"

var rowHeader = []string{
	"group", "signal", "label", "concept", "weight", "rating", "status", "applicable", "manual_check", "recommendation",
}

// Filename suggests a download name for a report of b.
func Filename(kind string, b *model.Batch, pageID int) string {
	host := strings.ReplaceAll(b.Host, ".", "-")
	date := b.CreatedAt.Format("2006-01-02")
	if kind == KindPage {
		return fmt.Sprintf("eeat-%s-page-%d-%s.csv", host, pageID, date)
	}
	return fmt.Sprintf("eeat-%s-%s-%s.csv", host, kind, date)
}

// Write renders the report kind of b to out. pageID is used by KindPage.
func Write(out io.Writer, kind string, cat *catalog.Catalog, b *model.Batch, pageID int, now time.Time) error {
	switch kind {
	case KindPage:
		p, err := b.Page(pageID)
		if err != nil {
			return err
		}
		return PageCSV(out, cat, *p)
	case KindPages:
		return PagesCSV(out, cat, b)
	case KindSummary:
		e, err := report.Summarize(cat, b, report.DefaultTop, now)
		if err != nil {
			return err
		}
		return SummaryCSV(out, e)
	case KindDomain:
		return DomainCSV(out, cat, b.Domain)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func writeRows(w *csv.Writer, rows []report.Row) error {
	if err := w.Write(rowHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Group,
			r.SignalID,
			r.Label,
			string(r.Concept),
			strconv.Itoa(r.Weight),
			strconv.Itoa(int(r.Rating)),
			r.Status,
			strconv.FormatBool(r.Applicable),
			strconv.FormatBool(r.ManualCheck),
			r.Recommendation,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func flush(w *csv.Writer) error {
	w.Flush()
	return w.Error()
}

// PageCSV writes the signal rows of one page, preceded by its classification.
func PageCSV(out io.Writer, cat *catalog.Catalog, p model.Page) error {
	w := csv.NewWriter(out)
	meta := [][]string{
		{"url", p.URL},
		{"status", string(p.Status)},
		{"intent", string(p.Intent)},
		{"ymyl", string(p.YMYL)},
		{"harmful", strconv.FormatBool(p.Harmful)},
		{},
	}
	if err := w.WriteAll(meta); err != nil {
		return err
	}
	if err := writeRows(w, report.PageRows(cat, p)); err != nil {
		return err
	}
	return flush(w)
}

// DomainCSV writes the domain-scope rows of the effective domain record.
func DomainCSV(out io.Writer, cat *catalog.Catalog, d model.Domain) error {
	w := csv.NewWriter(out)
	if err := writeRows(w, report.DomainRows(cat, d)); err != nil {
		return err
	}
	return flush(w)
}

// PagesCSV writes one row per completed page: each page signal's rating (or
// N/A when it does not apply), the concept percentages, the label and the
// top recommendations.
func PagesCSV(out io.Writer, cat *catalog.Catalog, b *model.Batch) error {
	w := csv.NewWriter(out)
	signals := cat.Scope(catalog.ScopePage).Signals()

	header := []string{"url", "intent", "ymyl", "harmful"}
	for _, s := range signals {
		header = append(header, s.ID)
	}
	for _, c := range model.Concepts {
		header = append(header, strings.ToLower(string(c)))
	}
	header = append(header, "overall", "label")
	for i := 1; i <= report.DefaultTop; i++ {
		header = append(header, fmt.Sprintf("recommendation_%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range b.Completed() {
		sum, err := report.SummarizePage(cat, p, report.DefaultTop)
		if err != nil {
			return fmt.Errorf("page %d: %w", p.ID, err)
		}
		rec := []string{p.URL, string(p.Intent), string(p.YMYL), strconv.FormatBool(p.Harmful)}
		for _, s := range signals {
			if !scoring.Resolve(s, p.Intent).Applies {
				rec = append(rec, report.StatusNA)
				continue
			}
			r, ok := p.Ratings[s.ID]
			if !ok {
				r = model.RatingUnscored
			}
			rec = append(rec, strconv.Itoa(int(r)))
		}
		rec = append(rec, scores(sum.Scores, model.Concepts)...)
		rec = append(rec, strconv.Itoa(sum.Scores.Overall), sum.Label)
		rec = append(rec, texts(sum.Recommendations, report.DefaultTop)...)
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return flush(w)
}

// SummaryCSV writes the executive summary in sections: batch facts, domain
// scores, page averages, domain recommendations and the per-page breakdown.
func SummaryCSV(out io.Writer, e report.Executive) error {
	w := csv.NewWriter(out)
	recs := [][]string{
		{"E-E-A-T executive summary"},
		{"batch", e.BatchID},
		{"host", e.Host},
		{"generated", e.GeneratedAt.Format(DateTimeFormat)},
		{"pages", strconv.Itoa(e.Total)},
		{"complete", strconv.Itoa(e.Counts[model.StatusComplete])},
		{"error", strconv.Itoa(e.Counts[model.StatusError])},
		{"pending_reviews", strconv.Itoa(e.PendingReviews)},
		{},
		{"domain"},
	}
	for _, c := range e.Domain.Scores.Keys {
		recs = append(recs, []string{string(c), strconv.Itoa(e.Domain.Scores.Get(c))})
	}
	recs = append(recs,
		[]string{"overall", strconv.Itoa(e.Domain.Scores.Overall), e.Domain.Label},
		[]string{},
		[]string{"page average"},
	)
	for _, c := range e.Average.Keys {
		recs = append(recs, []string{string(c), strconv.Itoa(e.Average.Get(c))})
	}
	recs = append(recs,
		[]string{"overall", strconv.Itoa(e.Average.Overall), scoring.Label(e.Average.Overall)},
		[]string{},
		[]string{"domain recommendations"},
		[]string{"signal", "label", "tier", "action", "text"},
	)
	for _, r := range e.Domain.Recommendations {
		recs = append(recs, []string{r.Signal.ID, r.Signal.Label, r.Tier(), r.Action, r.Text})
	}

	recs = append(recs, []string{}, []string{"page breakdown"})
	pageHeader := []string{"url", "status", "intent"}
	for _, c := range model.Concepts {
		pageHeader = append(pageHeader, strings.ToLower(string(c)))
	}
	pageHeader = append(pageHeader, "overall", "label")
	recs = append(recs, pageHeader)
	for _, p := range e.Pages {
		rec := []string{p.URL, string(p.Status), string(p.Intent)}
		rec = append(rec, scores(p.Scores, model.Concepts)...)
		rec = append(rec, strconv.Itoa(p.Scores.Overall), p.Label)
		recs = append(recs, rec)
	}

	if err := w.WriteAll(recs); err != nil {
		return err
	}
	return w.Error()
}

func scores(b scoring.Breakdown, keys []model.Concept) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strconv.Itoa(b.Get(k)))
	}
	return out
}

// texts returns the first n recommendation texts, padded with empty cells.
func texts(recs []recommend.Recommendation, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(recs); i++ {
		out[i] = recs[i].Text
	}
	return out
}
