package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")

	errMissingURL    = errors.New("missing url")
	errMissingURLs   = errors.New("missing urls")
	errMissingRating = errors.New("missing rating")
	errBadPage       = errors.New("page must be a non-negative integer")
)

// wrapKind tags err with an operation name and an error kind.
func wrapKind(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
