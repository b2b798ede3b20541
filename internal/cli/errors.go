package cli

import (
	"errors"
	"fmt"
)

// Sentinel errors for the command line tool.
var (
	ErrUnknownOutput = errors.New("unknown output format")
	ErrServer        = errors.New("server error")
	ErrNotFinished   = errors.New("batch did not finish in time")
)

// ServerError is a non-2xx answer from the scoring service.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// Is reports ErrServer for every ServerError.
func (e *ServerError) Is(target error) bool { return target == ErrServer }
