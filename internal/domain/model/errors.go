package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for model errors.
var (
	ErrUnknownIntent = errors.New("unknown page intent")
	ErrUnknownYMYL   = errors.New("unknown ymyl category")
	ErrInvalidRating = errors.New("invalid rating")
	ErrPageNotFound  = errors.New("page not found")
)

// InvalidRatingError reports a rating outside {-1, 0, 1, 2}.
type InvalidRatingError struct {
	SignalID string
	Value    int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("invalid rating %d for signal %q: must be one of -1, 0, 1, 2", e.Value, e.SignalID)
}

// Is makes errors.Is(err, ErrInvalidRating) match.
func (e *InvalidRatingError) Is(target error) bool {
	return target == ErrInvalidRating
}
