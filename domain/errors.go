package domain

import (
	"errors"
	"fmt"
)

// RetrievalError marks one retrieval source as unavailable or timed out.
// The orchestrator degrades to the surviving source instead of failing.
type RetrievalError struct {
	Source CandidateSource
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s retrieval failed: %v", e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ErrBothSourcesFailed means no retrieval source survived; the caller still
// gets an empty success envelope, never a 5xx.
var ErrBothSourcesFailed = errors.New("both retrieval sources failed")

// ValidationError rejects malformed input before any retrieval is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// TrackingError wraps analytics write failures. Always logged and swallowed,
// never returned to the search caller.
type TrackingError struct {
	Op  string
	Err error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("tracking %s failed: %v", e.Op, e.Err)
}

func (e *TrackingError) Unwrap() error {
	return e.Err
}
