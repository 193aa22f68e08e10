package model

import (
	"errors"
	"fmt"
)

// GraphError reports a structural problem in the stream graph: a duplicate
// id, a parent id that does not resolve, or a cycle.
type GraphError struct {
	Reason string
}

func (e *GraphError) Error() string { return "graph error: " + e.Reason }

func graphErr(format string, args ...interface{}) error {
	return &GraphError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError reports an invalid stream or settings value: a negative
// month, end_month < start_month, conversion_rate out of [0,1], or the NPV
// valuation precondition (E[discount_rate] must exceed terminal_growth_rate).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Reason }

func validationErr(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ErrNotFound is returned by UpdateStream/RemoveStream for an unknown id.
var ErrNotFound = errors.New("stream not found")
