// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Concept is one of the four E-E-A-T scoring concepts.
type Concept string

// Scoring concepts.
const (
	Experience Concept = "Experience"
	Expertise  Concept = "Expertise"
	Authority  Concept = "Authority"
	Trust      Concept = "Trust"
)

// Concepts lists the page-level concepts in presentation order.
var Concepts = []Concept{Experience, Expertise, Authority, Trust} //nolint:gochecknoglobals // fixed enumeration

// DomainConcepts lists the concepts scored at the domain level.
var DomainConcepts = []Concept{Authority, Trust} //nolint:gochecknoglobals // fixed enumeration

// Valid reports whether c is a known concept.
func (c Concept) Valid() bool {
	switch c {
	case Experience, Expertise, Authority, Trust:
		return true
	}
	return false
}

// Intent tags why a page exists. The zero value means the intent is unknown.
type Intent string

// Page intents.
const (
	IntentUnknown       Intent = ""
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentTransactional Intent = "transactional"
	IntentNavigational  Intent = "navigational"
	IntentService       Intent = "service"

	// IntentAll is the catalog sentinel meaning "applies to every intent".
	IntentAll Intent = "all"
)

// Intents lists the concrete page intents.
var Intents = []Intent{IntentInformational, IntentCommercial, IntentTransactional, IntentNavigational, IntentService} //nolint:gochecknoglobals // fixed enumeration

// ParseIntent normalises s into an Intent. Empty input yields IntentUnknown.
func ParseIntent(s string) (Intent, error) {
	in := Intent(strings.ToLower(strings.TrimSpace(s)))
	if in == IntentUnknown {
		return IntentUnknown, nil
	}
	for _, known := range Intents {
		if in == known {
			return in, nil
		}
	}
	return IntentUnknown, fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}

// YMYL is the "Your Money or Your Life" sensitivity tag of a page.
type YMYL string

// YMYL categories.
const (
	YMYLHealth   YMYL = "health"
	YMYLFinance  YMYL = "finance"
	YMYLSafety   YMYL = "safety"
	YMYLLegal    YMYL = "legal"
	YMYLNews     YMYL = "news"
	YMYLShopping YMYL = "shopping"
	YMYLOther    YMYL = "other"
	YMYLNone     YMYL = "none"
)

// ParseYMYL normalises s into a YMYL tag. Empty input yields YMYLNone.
func ParseYMYL(s string) (YMYL, error) {
	y := YMYL(strings.ToLower(strings.TrimSpace(s)))
	switch y {
	case "":
		return YMYLNone, nil
	case YMYLHealth, YMYLFinance, YMYLSafety, YMYLLegal, YMYLNews, YMYLShopping, YMYLOther, YMYLNone:
		return y, nil
	}
	return YMYLNone, fmt.Errorf("%w: %q", ErrUnknownYMYL, s)
}

// Rating is the observed strength of one signal.
type Rating int

// Rating values.
const (
	RatingUnscored Rating = -1 // needs manual verification
	RatingMissing  Rating = 0
	RatingPartial  Rating = 1
	RatingFull     Rating = 2

	// MaxRating is the best possible rating.
	MaxRating = RatingFull
)

// Valid reports whether r is inside {-1, 0, 1, 2}.
func (r Rating) Valid() bool {
	return r >= RatingUnscored && r <= RatingFull
}

// Scored reports whether r counts toward percentages.
func (r Rating) Scored() bool {
	return r >= RatingMissing && r <= RatingFull
}

// String returns the human status of the rating.
func (r Rating) String() string {
	switch r {
	case RatingUnscored:
		return "Needs Review"
	case RatingMissing:
		return "Missing"
	case RatingPartial:
		return "Partial"
	case RatingFull:
		return "Full"
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// Ratings maps signal ids to ratings. An id absent from the map is unrated.
type Ratings map[string]Rating

// Clone returns an independent copy of r.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for id, v := range r {
		out[id] = v
	}
	return out
}

// Validate returns an InvalidRatingError for the first out-of-range value.
func (r Ratings) Validate() error {
	for id, v := range r {
		if !v.Valid() {
			return &InvalidRatingError{SignalID: id, Value: int(v)}
		}
	}
	return nil
}
