package model

import "time"

// Status is the time-derived state of a booking.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// DateLayout and ClockLayout are the naive local formats bookings are stored in.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Booking reserves a room for [StartTime, EndTime) on Date.  RoomName and
// Floor are copied from the room at creation so they survive the room's
// deletion, in which case RoomID becomes nil.
//
// Secret is the self-chosen booking secret.  It is never serialized.
type Booking struct {
	ID        string    `json:"id"`         // bookings.id
	RoomID    *string   `json:"room_id"`    // bookings.room_id (nullable)
	RoomName  string    `json:"room_name"`  // bookings.room_name
	Floor     string    `json:"floor"`      // bookings.floor
	BookedBy  string    `json:"booked_by"`  // bookings.booked_by
	Date      string    `json:"date"`       // bookings.date, YYYY-MM-DD
	StartTime string    `json:"start_time"` // bookings.start_time, HH:MM
	EndTime   string    `json:"end_time"`   // bookings.end_time, HH:MM
	Status    Status    `json:"status"`     // bookings.status (hint only)
	Secret    string    `json:"-"`          // bookings.booking_secret
	CreatedAt time.Time `json:"created_at"` // bookings.created_at
}

// DeriveStatus computes the status of b at now.  Date and times are read in
// now's location.  When the stored values cannot be parsed the stored status
// is returned unchanged.
func (b Booking) DeriveStatus(now time.Time) Status {
	start, err := time.ParseInLocation(DateLayout+" "+ClockLayout, b.Date+" "+b.StartTime, now.Location())
	if err != nil {
		return b.Status
	}
	end, err := time.ParseInLocation(DateLayout+" "+ClockLayout, b.Date+" "+b.EndTime, now.Location())
	if err != nil {
		return b.Status
	}
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// WithDerivedStatus returns a copy of b whose Status reflects now.
func (b Booking) WithDerivedStatus(now time.Time) Booking {
	b.Status = b.DeriveStatus(now)
	return b
}
