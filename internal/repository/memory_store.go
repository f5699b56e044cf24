package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

// MemoryStore keeps rooms and bookings in process memory.  It is used for
// STORE_DRIVER=memory and in tests.  Admission is serialized per
// (room, date) so concurrent proposals for the same day cannot both pass
// the overlap check.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]model.Room
	bookings map[string]model.Booking

	locksMu  sync.Mutex
	dayLocks map[string]*sync.Mutex

	now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]model.Room),
		bookings: make(map[string]model.Booking),
		dayLocks: make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	slices.SortFunc(out, compareRooms)
	return out, nil
}

func (m *MemoryStore) GetRoom(ctx context.Context, id string) (model.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return r, nil
}

// EnsureRoom inserts room unless a room with the same id exists and returns
// the stored record either way.
func (m *MemoryStore) EnsureRoom(ctx context.Context, room model.Room) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rooms[room.ID]; ok {
		return existing, nil
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now().UTC()
	}
	m.rooms[room.ID] = room
	return room, nil
}

// CreateRoom inserts room and fails with ErrDuplicate if the id is taken.
func (m *MemoryStore) CreateRoom(ctx context.Context, room model.Room) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; ok {
		return model.Room{}, ErrDuplicate
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now().UTC()
	}
	m.rooms[room.ID] = room
	return room, nil
}

// UpsertRoom inserts room or overwrites name, floor and capacity of the
// existing record, keeping its creation time.
func (m *MemoryStore) UpsertRoom(ctx context.Context, room model.Room) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rooms[room.ID]; ok {
		room.CreatedAt = existing.CreatedAt
	} else if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now().UTC()
	}
	m.rooms[room.ID] = room
	return room, nil
}

// DeleteRoom removes the room and detaches its bookings, which keep their
// copied room name and floor.
func (m *MemoryStore) DeleteRoom(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return ErrRoomNotFound
	}
	delete(m.rooms, id)
	for bid, b := range m.bookings {
		if b.RoomID != nil && *b.RoomID == id {
			b.RoomID = nil
			m.bookings[bid] = b
		}
	}
	return nil
}

func (m *MemoryStore) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if f.RoomID != "" && (b.RoomID == nil || *b.RoomID != f.RoomID) {
			continue
		}
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		out = append(out, b)
	}
	slices.SortFunc(out, compareBookings)
	return out, nil
}

func (m *MemoryStore) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, nil
}

// AdmitBooking runs admit against the bookings of b's room and date and
// inserts b when it returns nil.  The whole sequence holds the
// (room, date) lock.
func (m *MemoryStore) AdmitBooking(ctx context.Context, b *model.Booking, admit AdmitFunc) error {
	if b.RoomID == nil {
		return ErrRoomNotFound
	}
	unlock := m.lockDay(*b.RoomID, b.Date)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	_, roomOK := m.rooms[*b.RoomID]
	var sameDay []model.Booking
	for _, existing := range m.bookings {
		if existing.RoomID != nil && *existing.RoomID == *b.RoomID && existing.Date == b.Date {
			sameDay = append(sameDay, existing)
		}
	}
	m.mu.RUnlock()
	if !roomOK {
		return ErrRoomNotFound
	}
	slices.SortFunc(sameDay, compareBookings)

	if admit != nil {
		if err := admit(sameDay); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.bookings[b.ID]; dup {
		return ErrDuplicate
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.now().UTC()
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *MemoryStore) UpdateBookingStatus(ctx context.Context, id string, status model.Status) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return b, nil
}

func (m *MemoryStore) DeleteBooking(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *MemoryStore) lockDay(roomID, date string) func() {
	key := roomID + "|" + date
	m.locksMu.Lock()
	l, ok := m.dayLocks[key]
	if !ok {
		l = &sync.Mutex{}
		m.dayLocks[key] = l
	}
	m.locksMu.Unlock()
	l.Lock()
	return l.Unlock
}
