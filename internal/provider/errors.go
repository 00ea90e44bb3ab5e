package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrProvider marks a failed upstream call. Callers may retry later.
	ErrProvider = errors.New("provider error")
	// ErrAuthExpired is returned when an expired token could not be refreshed.
	ErrAuthExpired = errors.New("provider authorization expired")
)

// StatusError is a non-success response from the provider API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrProvider
}
