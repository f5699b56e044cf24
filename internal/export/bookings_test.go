package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/room-booking/internal/model"
)

func TestBookingsXLSX(t *testing.T) {
	roomID := "R1"
	bookings := []model.Booking{
		{
			ID: "b-1", RoomID: &roomID, RoomName: "Boardroom", Floor: "Fourth Floor",
			BookedBy: "alice", Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00",
			Status: model.StatusUpcoming, Secret: "abc",
			CreatedAt: time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC),
		},
		{
			ID: "b-2", RoomName: "Gone Room", BookedBy: "bob",
			Date: "2024-06-02", StartTime: "13:00", EndTime: "14:30", Status: model.StatusCompleted,
		},
	}

	data, err := BookingsXLSX(bookings)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"b-1", "R1", "Boardroom", "Fourth Floor", "alice", "2024-06-01", "09:00", "10:00", "upcoming", "2024-05-30 08:00:00"}, rows[1])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "Gone Room", rows[2][2])

	for _, row := range rows {
		assert.NotContains(t, row, "abc")
	}
}

func TestBookingsXLSX_Empty(t *testing.T) {
	data, err := BookingsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
