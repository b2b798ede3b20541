package ingest

import (
	"errors"
	"fmt"
)

// ErrSchema is matched by every SchemaError.
var ErrSchema = errors.New("classification schema violation")

// SchemaError reports a classification field that failed validation.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("classification field %q: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func schemaErr(field, format string, args ...any) error {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
