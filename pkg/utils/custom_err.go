package utils

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork       = errors.New("network failure calling model backend")
	ErrTimeout       = errors.New("model call timed out")
	ErrQuotaExceeded = errors.New("model quota exhausted")
	ErrAPIFailure    = errors.New("model backend returned an error")
	ErrEmptyResponse = errors.New("model returned no completion text")
	ErrParsing       = errors.New("no parsable JSON in model output")
	ErrValidation    = errors.New("itinerary failed schema validation")
	ErrNotFound      = errors.New("referenced item not found")

	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDatabaseError      = errors.New("database error")
)

// ParsingError keeps the raw model text so a failed extraction can be
// diagnosed offline. Unwraps to ErrParsing.
type ParsingError struct {
	Reason  string
	RawText string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing failed: %s", e.Reason)
}

func (e *ParsingError) Unwrap() error { return ErrParsing }

// APIError captures a non-2xx, non-quota backend response verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model backend returned status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return ErrAPIFailure }

// ValidationError names the field that broke the itinerary schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConversionError reports how far a chunked conversion got before aborting.
// A partial result is never presented as complete.
type ConversionError struct {
	CompletedWeeks int
	TotalWeeks     int
	Err            error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion aborted after %d/%d weeks: %v",
		e.CompletedWeeks, e.TotalWeeks, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
