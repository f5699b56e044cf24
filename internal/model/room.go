package model

import "time"

// Room is a bookable conference room.  Rooms are created by an admin or
// provisioned implicitly the first time someone books an unknown room id.
//
// Fields:
//
//	ID        – primary key, chosen by the caller or generated.
//	Name      – display name.
//	Floor     – floor label, used for ordering.
//	Capacity  – number of seats; placeholder rooms get a configured default.
//	CreatedAt – creation timestamp.
type Room struct {
	ID        string    `json:"id"`         // rooms.id
	Name      string    `json:"name"`       // rooms.name
	Floor     string    `json:"floor"`      // rooms.floor
	Capacity  int       `json:"capacity"`   // rooms.capacity
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
}
