package util

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired means a refresh attempt failed and the session must
	// be torn down; the user has to log in again.
	ErrAuthExpired = errors.New("session expired, please log in again")

	// ErrNoQuestionnaire means the selected training has no quiz attached.
	ErrNoQuestionnaire = errors.New("training has no questionnaire")

	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError is a client-side constraint failure. Requests that fail
// validation are never sent upstream.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RequestError is a failed upstream call, carrying the server-provided
// message when one was available.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream request failed with status %d", e.Status)
}

// PartialSubmissionError reports a quiz submission that was aborted
// mid-sequence. Index identifies the failing question so the user can
// retry the attempt from the start.
type PartialSubmissionError struct {
	Index int
	Err   error
}

func (e *PartialSubmissionError) Error() string {
	return fmt.Sprintf("saving answer for question %d failed: %v", e.Index+1, e.Err)
}

func (e *PartialSubmissionError) Unwrap() error {
	return e.Err
}
