package model

import "time"

// Status is the lifecycle state of a page analysis.
type Status string

// Page lifecycle states: pending -> analyzing -> complete | error.
const (
	StatusPending   Status = "pending"
	StatusAnalyzing Status = "analyzing"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// Done reports whether the status is terminal.
func (s Status) Done() bool {
	return s == StatusComplete || s == StatusError
}

// Page is one analyzed URL of a batch.
type Page struct {
	ID     int    `json:"id"`
	URL    string `json:"url"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	Intent     Intent `json:"intent"`
	IntentNote string `json:"intent_note,omitempty"`
	YMYL       YMYL   `json:"ymyl"`
	YMYLNote   string `json:"ymyl_note,omitempty"`
	Harmful    bool   `json:"harmful"`
	HarmNote   string `json:"harm_note,omitempty"`

	// Ratings holds page-scope signals (content and author).
	Ratings Ratings `json:"ratings"`
	// BrandRatings holds the domain-scope signals observed on this page.
	BrandRatings Ratings `json:"brand_ratings"`

	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of p.
func (p Page) Clone() Page {
	out := p
	out.Ratings = p.Ratings.Clone()
	out.BrandRatings = p.BrandRatings.Clone()
	out.Strengths = append([]string(nil), p.Strengths...)
	out.Weaknesses = append([]string(nil), p.Weaknesses...)
	out.Recommendations = append([]string(nil), p.Recommendations...)
	return out
}

// Domain is the site-wide brand and trust record of a batch.
type Domain struct {
	// Observed is the best rating seen per signal across completed pages.
	Observed Ratings `json:"observed"`
	// Overrides are human corrections; they take precedence over Observed.
	Overrides Ratings `json:"overrides"`
	// Contributors counts the completed pages merged into Observed.
	Contributors int `json:"contributors"`
}

// Started reports whether at least one page has contributed.
func (d Domain) Started() bool {
	return d.Contributors > 0
}

// Effective returns Observed with Overrides applied.
func (d Domain) Effective() Ratings {
	out := d.Observed.Clone()
	for id, v := range d.Overrides {
		out[id] = v
	}
	return out
}

// Clone returns a deep copy of d.
func (d Domain) Clone() Domain {
	return Domain{
		Observed:     d.Observed.Clone(),
		Overrides:    d.Overrides.Clone(),
		Contributors: d.Contributors,
	}
}

// Batch is one submission of same-host URLs and everything derived from it.
type Batch struct {
	ID        string    `json:"id"`
	Host      string    `json:"host"`
	CreatedAt time.Time `json:"created_at"`
	Pages     []Page    `json:"pages"`
	Domain    Domain    `json:"domain"`
}

// NewBatch creates a batch with every URL pending.
func NewBatch(id, host string, urls []string, now time.Time) *Batch {
	b := &Batch{
		ID:        id,
		Host:      host,
		CreatedAt: now,
		Pages:     make([]Page, len(urls)),
		Domain:    Domain{Observed: Ratings{}, Overrides: Ratings{}},
	}
	for i, u := range urls {
		b.Pages[i] = Page{
			ID:           i,
			URL:          u,
			Status:       StatusPending,
			YMYL:         YMYLNone,
			Ratings:      Ratings{},
			BrandRatings: Ratings{},
			UpdatedAt:    now,
		}
	}
	return b
}

// Page returns a pointer to the page with the given id.
func (b *Batch) Page(id int) (*Page, error) {
	if id < 0 || id >= len(b.Pages) || b.Pages[id].ID != id {
		for i := range b.Pages {
			if b.Pages[i].ID == id {
				return &b.Pages[i], nil
			}
		}
		return nil, ErrPageNotFound
	}
	return &b.Pages[id], nil
}

// Completed returns the pages whose analysis finished successfully.
func (b *Batch) Completed() []Page {
	var out []Page
	for _, p := range b.Pages {
		if p.Status == StatusComplete {
			out = append(out, p)
		}
	}
	return out
}

// Counts returns the number of pages per status.
func (b *Batch) Counts() map[Status]int {
	out := map[Status]int{}
	for _, p := range b.Pages {
		out[p.Status]++
	}
	return out
}

// Done reports whether every page reached a terminal state.
func (b *Batch) Done() bool {
	for _, p := range b.Pages {
		if !p.Status.Done() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of b.
func (b *Batch) Clone() *Batch {
	out := *b
	out.Pages = make([]Page, len(b.Pages))
	for i, p := range b.Pages {
		out.Pages[i] = p.Clone()
	}
	out.Domain = b.Domain.Clone()
	return &out
}
