package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/room-booking/internal/model"
)

var (
	// ErrInvalidTimeFormat marks a clock string that is not a valid HH:MM.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrInvalidDuration is returned when a booking is shorter than the
	// minimum duration or ends before it starts.
	ErrInvalidDuration = errors.New("invalid booking duration")

	// ErrNotFound is returned for unknown booking or room ids.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the supplied secret does not authorize
	// the mutation.
	ErrForbidden = errors.New("forbidden")

	// ErrRoomExists is returned when creating a room whose id is taken.
	ErrRoomExists = errors.New("room already exists")

	// ErrStoreUnavailable classifies every failure talking to the store.
	// Callers see it through *StoreError.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Reason }

func (e *ValidationError) Unwrap() error { return e.Err }

func required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// ConflictError is returned when a proposed booking overlaps an existing one
// for the same room and date.  Booking is the blocking reservation.
type ConflictError struct {
	Booking model.Booking
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func newConflict(existing model.Booking) *ConflictError {
	return &ConflictError{
		Booking: existing,
		Message: fmt.Sprintf("This room is already booked by %s from %s to %s on %s",
			existing.BookedBy, existing.StartTime, existing.EndTime, existing.Date),
	}
}

// StoreError wraps a lower-layer failure.  It matches ErrStoreUnavailable
// with errors.Is while keeping the cause for logging.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }
