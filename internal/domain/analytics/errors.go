package analytics

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery marks a query rejected because of its shape
var ErrInvalidQuery = errors.New("invalid query")

// QueryError describes why a query was rejected
type QueryError struct {
	Param  string
	Value  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// Unwrap lets callers match any QueryError with errors.Is(err, ErrInvalidQuery)
func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}

// ValidationError is a per-record classification failure
type ValidationError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %s: %s: %s", e.RecordID, e.Field, e.Reason)
}

// Rejection is a record excluded from aggregation together with the reason
type Rejection struct {
	RecordID string
	Err      *ValidationError
}
