// Package repository defines error types that are reused across the store
// implementations.  These sentinel values allow higher layers to
// distinguish missing records from infrastructure failures.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup, update or delete matches
// no row.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a booking lookup, update or delete
// matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicate is returned when an insert collides with an existing primary
// key (MySQL 1062, PostgreSQL 23505).
var ErrDuplicate = errors.New("duplicate key")
