// Package queue carries booking lifecycle events over RabbitMQ: a publisher
// used by the admission service and a consumer that appends an audit trail.
package queue

// QueueName is the durable queue all booking events are routed to.
const QueueName = "booking.events"

// Event types.
const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is created, cancelled or has its
// status patched.  It contains enough information for downstream consumers to
// log or notify without querying the store.  The booking secret is never
// included.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  string `json:"booking_id"`
	RoomID     string `json:"room_id,omitempty"`
	RoomName   string `json:"room_name"`
	Floor      string `json:"floor"`
	BookedBy   string `json:"booked_by"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	Override   bool   `json:"admin_override,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
