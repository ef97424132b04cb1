package xerrors

import (
	"errors"
	"fmt"
)

// Application-wide sentinel errors. Stores translate backend specific
// "missing" results into ErrNotFound so callers never inspect driver codes.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal server error")
	ErrRateLimited  = errors.New("too many requests")
)

// Popup session errors.
var (
	ErrSessionBusy       = errors.New("popup session already active")
	ErrActivationAborted = errors.New("popup activation aborted")
)

// Wrap adds context to an error while keeping it matchable with errors.Is.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or fallback if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
