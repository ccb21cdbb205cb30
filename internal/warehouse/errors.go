// Package warehouse classifies failures from the telemetry warehouse into
// the conditions each dashboard page recovers from.
package warehouse

import (
	"errors"
	"fmt"

	"github.com/smallbiznis/flowsight/pkg/db"
)

var (
	// ErrDataUnavailable marks a missing or empty source relation.
	ErrDataUnavailable = errors.New("data_unavailable")
	// ErrPermissionDenied marks a missing read grant on the source relation.
	ErrPermissionDenied = errors.New("permission_denied")
)

// QueryError wraps an engine-side failure or schema mismatch.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Classify maps a raw driver error onto the dashboard error taxonomy.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if db.IsPermissionDenied(err) {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}
	if db.IsUndefinedRelation(err) {
		return fmt.Errorf("%s: %w", op, ErrDataUnavailable)
	}
	return &QueryError{Op: op, Err: err}
}

// ErrorType returns the taxonomy label for metrics and logs.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	default:
		var qe *QueryError
		if errors.As(err, &qe) {
			return "query_error"
		}
		return "internal_error"
	}
}
