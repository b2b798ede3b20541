package catalog

import (
	"errors"
	"fmt"
)

// Sentinel kinds for catalog errors.
var (
	ErrUnknownSignal  = errors.New("unknown signal")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// UnknownSignalError reports a lookup of an id absent from the catalog.
type UnknownSignalError struct {
	ID string
}

func (e *UnknownSignalError) Error() string {
	return fmt.Sprintf("unknown signal %q", e.ID)
}

// Is makes errors.Is(err, ErrUnknownSignal) match.
func (e *UnknownSignalError) Is(target error) bool {
	return target == ErrUnknownSignal
}
