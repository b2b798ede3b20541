// Package ingest validates classifier verdicts and maps them onto signal ids.
package ingest

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
)

// Classifier group names.
const (
	GroupDomain  = "domain"
	GroupContent = "content"
	GroupAuthor  = "author"

	// groupBrandAlias is the older name of the domain group.
	groupBrandAlias = "brand"
)

// requiredGroups must be present as objects in every verdict.
var requiredGroups = []string{GroupDomain, GroupContent, GroupAuthor} //nolint:gochecknoglobals // fixed list

var fence = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Classification is a validated classifier verdict for one page.
type Classification struct {
	Intent     model.Intent `json:"intent"`
	IntentNote string       `json:"intentNote,omitempty"`
	YMYL       model.YMYL   `json:"ymyl"`
	YMYLNote   string       `json:"ymylNote,omitempty"`
	Harmful    bool         `json:"harmful"`
	HarmNote   string       `json:"harmNote,omitempty"`

	// Groups maps a classifier group name to its key/rating pairs.
	Groups map[string]map[string]model.Rating `json:"groups"`

	Strengths       []string `json:"strengths,omitempty"`
	Weaknesses      []string `json:"weaknesses,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// StripFences returns the body of the first markdown code fence in text, or
// text itself trimmed when there is none.
func StripFences(text string) string {
	if m := fence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// Parse decodes and validates a classifier verdict. It fails closed: any
// malformed field yields a *SchemaError and no partial result.
func Parse(data []byte) (Classification, error) {
	body := []byte(StripFences(string(data)))

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Classification{}, schemaErr("$", "not a JSON object: %v", err)
	}
	if raw == nil {
		return Classification{}, schemaErr("$", "not a JSON object")
	}

	var c Classification
	var err error

	intentField := "intent"
	if _, ok := raw[intentField]; !ok {
		intentField = "purpose"
	}
	s, err := optString(raw, intentField)
	if err != nil {
		return Classification{}, err
	}
	if c.Intent, err = model.ParseIntent(s); err != nil {
		return Classification{}, schemaErr(intentField, "unknown intent %q", s)
	}
	noteField := intentField + "Note"
	if c.IntentNote, err = optString(raw, noteField); err != nil {
		return Classification{}, err
	}

	if s, err = optString(raw, "ymyl"); err != nil {
		return Classification{}, err
	}
	if c.YMYL, err = model.ParseYMYL(s); err != nil {
		return Classification{}, schemaErr("ymyl", "unknown category %q", s)
	}
	if c.YMYLNote, err = optString(raw, "ymylNote"); err != nil {
		return Classification{}, err
	}

	if v, ok := raw["harmful"]; ok {
		if err := json.Unmarshal(v, &c.Harmful); err != nil {
			return Classification{}, schemaErr("harmful", "must be a boolean")
		}
	}
	if c.HarmNote, err = optString(raw, "harmNote"); err != nil {
		return Classification{}, err
	}

	if _, ok := raw[GroupDomain]; !ok {
		if alias, ok := raw[groupBrandAlias]; ok {
			raw[GroupDomain] = alias
		}
	}
	c.Groups = make(map[string]map[string]model.Rating, len(requiredGroups))
	for _, g := range requiredGroups {
		v, ok := raw[g]
		if !ok {
			return Classification{}, schemaErr(g, "group is missing")
		}
		group, err := parseGroup(g, v)
		if err != nil {
			return Classification{}, err
		}
		c.Groups[g] = group
	}

	if c.Strengths, err = optStrings(raw, "strengths"); err != nil {
		return Classification{}, err
	}
	if c.Weaknesses, err = optStrings(raw, "weaknesses"); err != nil {
		return Classification{}, err
	}
	if c.Recommendations, err = optStrings(raw, "recommendations"); err != nil {
		return Classification{}, err
	}
	return c, nil
}

func parseGroup(name string, data json.RawMessage) (map[string]model.Rating, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, schemaErr(name, "must be an object")
	}
	out := make(map[string]model.Rating, len(fields))
	for key, v := range fields {
		field := name + "." + key
		trimmed := bytes.TrimSpace(v)
		if string(trimmed) == "null" {
			continue
		}
		if len(trimmed) > 0 && trimmed[0] == '"' {
			return nil, schemaErr(field, "must be an integer rating, got a string")
		}
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return nil, schemaErr(field, "must be an integer rating")
		}
		i, err := n.Int64()
		if err != nil {
			return nil, schemaErr(field, "must be an integer rating, got %s", n)
		}
		r := model.Rating(i)
		if !r.Valid() {
			return nil, schemaErr(field, "rating %d outside -1..2", i)
		}
		out[key] = r
	}
	return out, nil
}

func optString(raw map[string]json.RawMessage, field string) (string, error) {
	v, ok := raw[field]
	if !ok || string(v) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", schemaErr(field, "must be a string")
	}
	return s, nil
}

func optStrings(raw map[string]json.RawMessage, field string) ([]string, error) {
	v, ok := raw[field]
	if !ok || string(v) == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(v, &out); err != nil {
		return nil, schemaErr(field, "must be a list of strings")
	}
	return out, nil
}

// PageRatings maps the page-scope groups of c onto signal ids of cat.
func PageRatings(cat *catalog.Catalog, c Classification) model.Ratings {
	return ratings(cat, catalog.ScopePage, c)
}

// DomainRatings maps the domain-scope groups of c onto signal ids of cat.
func DomainRatings(cat *catalog.Catalog, c Classification) model.Ratings {
	return ratings(cat, catalog.ScopeDomain, c)
}

// ratings looks every signal up by its group source and key. An absent key
// yields RatingUnscored for manual-check signals and RatingMissing otherwise;
// keys the catalog does not name are ignored.
func ratings(cat *catalog.Catalog, scope catalog.Scope, c Classification) model.Ratings {
	out := model.Ratings{}
	for _, g := range cat.Groups() {
		if g.Scope != scope {
			continue
		}
		src := c.Groups[g.Source]
		for _, s := range g.Signals {
			if v, ok := src[s.Key]; ok {
				out[s.ID] = v
				continue
			}
			if s.ManualCheck {
				out[s.ID] = model.RatingUnscored
			} else {
				out[s.ID] = model.RatingMissing
			}
		}
	}
	return out
}

// Apply copies c onto a page and marks it complete.
func Apply(cat *catalog.Catalog, p *model.Page, c Classification) {
	p.Intent = c.Intent
	p.IntentNote = c.IntentNote
	p.YMYL = c.YMYL
	p.YMYLNote = c.YMYLNote
	p.Harmful = c.Harmful
	p.HarmNote = c.HarmNote
	p.Ratings = PageRatings(cat, c)
	p.BrandRatings = DomainRatings(cat, c)
	p.Strengths = c.Strengths
	p.Weaknesses = c.Weaknesses
	p.Recommendations = c.Recommendations
	p.Status = model.StatusComplete
	p.Error = ""
}
