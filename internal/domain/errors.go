package domain

import (
	"errors"
	"fmt"
)

// ErrUndefinedMetric is reported when a ratio has a zero (or near-zero) denominator.
// It is a soft failure: the trial stays in the set but is skipped by Sharpe ranking.
var ErrUndefinedMetric = errors.New("metric undefined: portfolio risk is zero")

// DataError describes a malformed or degenerate price table.
// Row and Column are -1 when the problem is not tied to a single cell.
type DataError struct {
	Op     string
	Row    int
	Column string
	Reason string
}

func (e *DataError) Error() string {
	msg := "invalid price data"
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	switch {
	case e.Row >= 0 && e.Column != "":
		return fmt.Sprintf("%s at row %d, column %q: %s", msg, e.Row, e.Column, e.Reason)
	case e.Row >= 0:
		return fmt.Sprintf("%s at row %d: %s", msg, e.Row, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("%s in column %q: %s", msg, e.Column, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", msg, e.Reason)
	}
}

// NewDataError builds a DataError that is not tied to a specific cell.
func NewDataError(op, reason string) *DataError {
	return &DataError{Op: op, Row: -1, Reason: reason}
}

// SamplingError is returned when repeated random draws could not be normalized.
type SamplingError struct {
	AssetCount int
	Attempts   int
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("sampling failed: %d consecutive degenerate draws over %d assets", e.Attempts, e.AssetCount)
}

// ValidationError rejects a configuration value or an input that makes
// an operation undefined (empty trial sets, non-positive counts).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsUserError reports whether err stems from bad input rather than a runtime failure.
func IsUserError(err error) bool {
	var dataErr *DataError
	var validationErr *ValidationError
	return errors.As(err, &dataErr) || errors.As(err, &validationErr)
}
