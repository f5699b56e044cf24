package repository

import (
	"cmp"

	"github.com/iliyamo/room-booking/internal/model"
)

// BookingFilter narrows ListBookings.  Empty fields match everything.
type BookingFilter struct {
	RoomID string
	Date   string
}

// AdmitFunc inspects the bookings already held for the candidate's room and
// date, ordered by start time, and returns a non-nil error to veto the
// insert.  A nil AdmitFunc admits unconditionally.
type AdmitFunc func(sameDay []model.Booking) error

// compareBookings orders by date, then start time.
func compareBookings(a, b model.Booking) int {
	return cmp.Or(
		cmp.Compare(a.Date, b.Date),
		cmp.Compare(a.StartTime, b.StartTime),
		cmp.Compare(a.ID, b.ID),
	)
}

// compareRooms orders by floor, then name.
func compareRooms(a, b model.Room) int {
	return cmp.Or(
		cmp.Compare(a.Floor, b.Floor),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.ID, b.ID),
	)
}
