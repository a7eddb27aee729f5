package domain

import (
	"errors"
	"fmt"
)

// Language model error types

var (
	// ErrLanguageModelUnavailable indicates the language model backend is unavailable
	ErrLanguageModelUnavailable = errors.New("language model unavailable")

	// ErrLanguageModelTimeout indicates a request to the language model timed out
	ErrLanguageModelTimeout = errors.New("language model request timeout")

	// ErrInvalidRequest indicates an invalid request was made (4xx client errors)
	ErrInvalidRequest = errors.New("invalid request")

	// ErrExtractionFailure indicates slot extraction could not produce a usable field set
	ErrExtractionFailure = errors.New("slot extraction failed")

	// ErrGenerationFailure indicates the language model could not produce a reply
	ErrGenerationFailure = errors.New("reply generation failed")
)

// Conversation and booking error types

var (
	// ErrMalformedMessage indicates an inbound envelope could not be parsed or has an unknown type
	ErrMalformedMessage = errors.New("malformed message")

	// ErrWeatherUnavailable indicates neither a forecast nor current conditions could be fetched
	ErrWeatherUnavailable = errors.New("weather unavailable")

	// ErrForecastOutOfRange indicates the requested date is outside the provider's forecast horizon
	ErrForecastOutOfRange = errors.New("date outside forecast horizon")

	// ErrUnresolvedDate indicates a date expression could not be turned into a calendar date
	ErrUnresolvedDate = errors.New("unresolved date")
)

// UnresolvedDateError carries the original expression for display back to the user.
// Past is set when the expression names a date that has already gone by.
type UnresolvedDateError struct {
	Input string
	Past  bool
}

func (e *UnresolvedDateError) Error() string {
	if e.Past {
		return fmt.Sprintf("%v: %q is in the past", ErrUnresolvedDate, e.Input)
	}
	return fmt.Sprintf("%v: %q", ErrUnresolvedDate, e.Input)
}

// Unwrap lets errors.Is match ErrUnresolvedDate.
func (e *UnresolvedDateError) Unwrap() error {
	return ErrUnresolvedDate
}

// FinalizationReason classifies why a booking could not be committed.
type FinalizationReason string

const (
	// FinalizationIncomplete - required slots are still empty
	FinalizationIncomplete FinalizationReason = "incomplete"
	// FinalizationUnresolvedDate - the booking date could not be resolved
	FinalizationUnresolvedDate FinalizationReason = "unresolved-date"
	// FinalizationPersistence - validation or store failure
	FinalizationPersistence FinalizationReason = "persistence"
	// FinalizationAborted - the owning session was torn down before commit
	FinalizationAborted FinalizationReason = "aborted"
)

// FinalizationError is returned by the booking finalizer. Slot state is never
// mutated when it is returned.
type FinalizationError struct {
	Reason  FinalizationReason
	Missing []string
	Err     error
}

func (e *FinalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("finalization failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("finalization failed (%s)", e.Reason)
}

func (e *FinalizationError) Unwrap() error {
	return e.Err
}
