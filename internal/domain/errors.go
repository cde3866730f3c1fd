package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAttemptNotFound is returned when an attempt lookup misses the ledger.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrAchievementNotFound is returned for unknown achievement IDs.
	ErrAchievementNotFound = errors.New("achievement not found")
	// ErrSessionNotFound is returned when a user has no active quiz session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidCredentials is returned when login finds no matching user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailAlreadyInUse is returned when registering an email that already exists.
	ErrEmailAlreadyInUse = errors.New("email already in use")
	// ErrInvalidStateTransition is returned when a session operation is called in the wrong state.
	ErrInvalidStateTransition = errors.New("invalid session state transition")
	// ErrValidation is the parent of every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated is returned when no session is present.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when a role lacks a permission.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
