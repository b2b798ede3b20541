package anthropic

import (
	"errors"
	"fmt"
)

// Sentinel errors for the classifier.
var (
	ErrMissingAPIKey = errors.New("anthropic: API key is required")
	ErrEmptyResponse = errors.New("anthropic: no text content returned")
)

// APIError is a non-2xx answer from the messages endpoint.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic error (status %d): %s", e.Status, e.Message)
}
