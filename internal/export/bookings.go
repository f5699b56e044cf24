// Package export renders bookings as spreadsheets for offline reporting.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/room-booking/internal/model"
)

// SheetName is the single worksheet of an export.
const SheetName = "Bookings"

// Header is the first row of the Bookings sheet.  The booking secret is never
// exported.
var Header = []string{
	"Booking ID",
	"Room ID",
	"Room",
	"Floor",
	"Booked By",
	"Date",
	"Start",
	"End",
	"Status",
	"Created At",
}

var columnWidths = []float64{38, 38, 24, 16, 20, 12, 8, 8, 12, 22}

// BookingsXLSX returns an .xlsx workbook listing bookings in the given order.
func BookingsXLSX(bookings []model.Booking) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("export: header row: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	for i, b := range bookings {
		roomID := ""
		if b.RoomID != nil {
			roomID = *b.RoomID
		}
		created := ""
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.UTC().Format("2006-01-02 15:04:05")
		}
		row := []interface{}{
			b.ID, roomID, b.RoomName, b.Floor, b.BookedBy,
			b.Date, b.StartTime, b.EndTime, string(b.Status), created,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("export: freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
