package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoActiveChannel  = errors.New("no active channel")
	ErrSessionExpired   = errors.New("session expired")
)

// ValidationError is a locally detected input problem. It never reaches the
// network and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var ErrPasswordMismatch = &ValidationError{Message: "Passwords do not match"}

// AuthError is a failed login or signup. Message is what the user sees;
// Err is the underlying cause.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// userMessage joins the server-provided messages of err, or returns
// fallback when there are none.
func userMessage(err error, fallback string) string {
	if msgs := client.Messages(err); len(msgs) > 0 {
		return strings.Join(msgs, ", ")
	}
	return fallback
}
