package service

import (
	"context"

	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/queue"
	"github.com/iliyamo/room-booking/internal/repository"
)

// Store is the persistence boundary of the booking service.  Both
// repository.SQLStore and repository.MemoryStore satisfy it.
//
// AdmitBooking must run admit and the insert as one critical section per
// (room, date) so two concurrent proposals cannot both pass the overlap
// check.
type Store interface {
	Ping(ctx context.Context) error

	ListRooms(ctx context.Context) ([]model.Room, error)
	GetRoom(ctx context.Context, id string) (model.Room, error)
	EnsureRoom(ctx context.Context, room model.Room) (model.Room, error)
	CreateRoom(ctx context.Context, room model.Room) (model.Room, error)
	UpsertRoom(ctx context.Context, room model.Room) (model.Room, error)
	DeleteRoom(ctx context.Context, id string) error

	ListBookings(ctx context.Context, f repository.BookingFilter) ([]model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	AdmitBooking(ctx context.Context, b *model.Booking, admit repository.AdmitFunc) error
	UpdateBookingStatus(ctx context.Context, id string, status model.Status) (model.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

// EventPublisher receives booking lifecycle events.  *queue.Publisher
// implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

var (
	_ Store          = (*repository.SQLStore)(nil)
	_ Store          = (*repository.MemoryStore)(nil)
	_ EventPublisher = (*queue.Publisher)(nil)
)
