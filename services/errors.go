package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a booking id is unknown so HTTP handlers can
// respond with 404.
var ErrNotFound = errors.New("booking not found")

// ValidationError reports a malformed or missing booking field. Never
// retried; surfaced as a 400 with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking: %s %s", e.Field, e.Reason)
}

// CapacityExceededError rejects a booking whose party would push the date
// slot past its hard cap. The caller has to pick another date.
type CapacityExceededError struct {
	Date        string
	PartySize   int
	Occupancy   int
	MaxCapacity int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("booking of %d would exceed capacity for %s (%d/%d seats taken)",
		e.PartySize, e.Date, e.Occupancy, e.MaxCapacity)
}

// NotificationDispatchError wraps a gateway failure. Confirmation transitions
// are never rolled back because of it; callers log it and report the
// operation as a degraded success.
type NotificationDispatchError struct {
	Err error
}

func (e *NotificationDispatchError) Error() string {
	return fmt.Sprintf("notification dispatch failed: %v", e.Err)
}

func (e *NotificationDispatchError) Unwrap() error {
	return e.Err
}
