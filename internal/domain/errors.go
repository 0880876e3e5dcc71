package domain

import (
	"errors"
	"fmt"
)

// Errors that the pipeline surfaces to its caller. Everything else is either
// retried or absorbed by the deterministic fallback.
var (
	// ErrInjectionDetected indicates the submission contained a known
	// prompt-override marker. The pipeline never runs for such input.
	ErrInjectionDetected = errors.New("prompt injection marker detected")

	// ErrInvalidSubmission indicates the submission failed field validation.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// SubmissionError wraps a validation failure with the offending field,
// so the transport layer can build a precise error payload.
type SubmissionError struct {
	// Field names the submission field that failed validation.
	Field string

	// Reason is a short human-readable description of the failure.
	Reason string
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%v: field %s %s", ErrInvalidSubmission, e.Field, e.Reason)
}

// Unwrap ties SubmissionError into the ErrInvalidSubmission chain.
func (e *SubmissionError) Unwrap() error { return ErrInvalidSubmission }
