package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-booking/internal/model"
)

func TestMemoryStore_RoomsOrderedByFloorThenName(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, err := m.CreateRoom(ctx, model.Room{ID: "2", Name: "Meeting Room B", Floor: "Fourth Floor", Capacity: 8})
	require.NoError(t, err)
	_, err = m.CreateRoom(ctx, model.Room{ID: "1", Name: "Conference Room A", Floor: "Fourth Floor", Capacity: 12})
	require.NoError(t, err)
	_, err = m.CreateRoom(ctx, model.Room{ID: "4", Name: "Small Meeting Room", Floor: "First Floor", Capacity: 4})
	require.NoError(t, err)

	rooms, err := m.ListRooms(ctx)
	require.NoError(t, err)
	ids := []string{rooms[0].ID, rooms[1].ID, rooms[2].ID}
	assert.Equal(t, []string{"4", "1", "2"}, ids)

	_, err = m.CreateRoom(ctx, model.Room{ID: "1", Name: "dup"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_EnsureRoomKeepsExisting(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	first, err := m.EnsureRoom(ctx, model.Room{ID: "R1", Name: "Boardroom", Floor: "Fourth Floor", Capacity: 16})
	require.NoError(t, err)

	again, err := m.EnsureRoom(ctx, model.Room{ID: "R1", Name: "R1", Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestMemoryStore_UpsertRoomKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	first, err := m.UpsertRoom(ctx, model.Room{ID: "R1", Name: "Boardroom", Floor: "Fourth Floor", Capacity: 16})
	require.NoError(t, err)

	updated, err := m.UpsertRoom(ctx, model.Room{ID: "R1", Name: "Big Boardroom", Floor: "Fourth Floor", Capacity: 20})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 20, updated.Capacity)
}

func TestMemoryStore_DeleteRoomDetachesBookings(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, err := m.EnsureRoom(ctx, model.Room{ID: "R1", Name: "Boardroom"})
	require.NoError(t, err)
	b := candidateBooking()
	require.NoError(t, m.AdmitBooking(ctx, b, nil))

	require.NoError(t, m.DeleteRoom(ctx, "R1"))
	assert.ErrorIs(t, m.DeleteRoom(ctx, "R1"), ErrRoomNotFound)

	got, err := m.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RoomID)
	assert.Equal(t, "Boardroom", got.RoomName)
}

func TestMemoryStore_AdmitRequiresRoom(t *testing.T) {
	m := NewMemoryStore()
	err := m.AdmitBooking(context.Background(), candidateBooking(), nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStore_AdmitPassesSameDayOnly(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, err := m.EnsureRoom(ctx, model.Room{ID: "R1"})
	require.NoError(t, err)
	_, err = m.EnsureRoom(ctx, model.Room{ID: "R2"})
	require.NoError(t, err)

	seed := []*model.Booking{
		{ID: "a", RoomID: strPtr("R1"), Date: "2024-06-01", StartTime: "13:00", EndTime: "14:00"},
		{ID: "b", RoomID: strPtr("R1"), Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"},
		{ID: "c", RoomID: strPtr("R1"), Date: "2024-06-02", StartTime: "09:00", EndTime: "10:00"},
		{ID: "d", RoomID: strPtr("R2"), Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"},
	}
	for _, b := range seed {
		require.NoError(t, m.AdmitBooking(ctx, b, nil))
	}

	var seen []string
	err = m.AdmitBooking(ctx, candidateBooking(), func(sameDay []model.Booking) error {
		for _, b := range sameDay {
			seen = append(seen, b.ID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, seen)

	filtered, err := m.ListBookings(ctx, BookingFilter{RoomID: "R1", Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Len(t, filtered, 3)
}

func TestMemoryStore_AdmitSerializesSameDay(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, err := m.EnsureRoom(ctx, model.Room{ID: "R1"})
	require.NoError(t, err)

	taken := errors.New("taken")
	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := candidateBooking()
			b.ID = fmt.Sprintf("b-%d", i)
			err := m.AdmitBooking(ctx, b, func(sameDay []model.Booking) error {
				if len(sameDay) > 0 {
					return taken
				}
				return nil
			})
			if err == nil {
				admitted.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted.Load())
}

func TestMemoryStore_UpdateAndDeleteBooking(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_, err := m.EnsureRoom(ctx, model.Room{ID: "R1"})
	require.NoError(t, err)
	b := candidateBooking()
	require.NoError(t, m.AdmitBooking(ctx, b, nil))
	assert.ErrorIs(t, m.AdmitBooking(ctx, candidateBooking(), nil), ErrDuplicate)

	got, err := m.UpdateBookingStatus(ctx, b.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	_, err = m.UpdateBookingStatus(ctx, "missing", model.StatusCompleted)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	require.NoError(t, m.DeleteBooking(ctx, b.ID))
	assert.ErrorIs(t, m.DeleteBooking(ctx, b.ID), ErrBookingNotFound)
	_, err = m.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
