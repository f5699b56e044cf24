package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/room-booking/internal/model"
)

const bookingColumns = `id, room_id, room_name, floor, booked_by, date, start_time, end_time, status, booking_secret, created_at`

func scanBooking(sc scanner) (model.Booking, error) {
	var (
		b      model.Booking
		roomID sql.NullString
		status sql.NullString
	)
	if err := sc.Scan(&b.ID, &roomID, &b.RoomName, &b.Floor, &b.BookedBy, &b.Date,
		&b.StartTime, &b.EndTime, &status, &b.Secret, &b.CreatedAt); err != nil {
		return model.Booking{}, err
	}
	if roomID.Valid {
		id := roomID.String
		b.RoomID = &id
	}
	b.Status = model.Status(status.String)
	return b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBookings returns bookings matching f ordered by date, then start time.
func (s *SQLStore) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	where := []string{}
	args := []any{}
	if f.RoomID != "" {
		where = append(where, "room_id = ?")
		args = append(args, f.RoomID)
	}
	if f.Date != "" {
		where = append(where, "date = ?")
		args = append(args, f.Date)
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY date, start_time, id`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// GetBooking retrieves a booking by id, secret included.  It returns
// ErrBookingNotFound when no row matches.
func (s *SQLStore) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, ErrBookingNotFound
		}
		return model.Booking{}, err
	}
	return b, nil
}

// AdmitBooking inserts b if admit accepts the bookings already held for b's
// room and date.  The room row is locked with SELECT ... FOR UPDATE for the
// duration of the transaction, so concurrent admissions for the same room
// are serialized and each one sees the others' committed inserts.  It
// returns ErrRoomNotFound if the room vanished, or whatever admit returned.
func (s *SQLStore) AdmitBooking(ctx context.Context, b *model.Booking, admit AdmitFunc) error {
	if b.RoomID == nil {
		return ErrRoomNotFound
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err := tx.QueryRowContext(ctx, s.rebind(`SELECT id FROM rooms WHERE id = ? FOR UPDATE`), *b.RoomID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}

	rows, err := tx.QueryContext(ctx,
		s.rebind(`SELECT `+bookingColumns+` FROM bookings WHERE room_id = ? AND date = ? ORDER BY start_time, id`),
		*b.RoomID, b.Date)
	if err != nil {
		return err
	}
	sameDay, err := collectBookings(rows)
	if err != nil {
		return err
	}

	if admit != nil {
		if err := admit(sameDay); err != nil {
			return err
		}
	}

	const ins = `INSERT INTO bookings (id, room_id, room_name, floor, booked_by, date, start_time, end_time, status, booking_secret, created_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, s.rebind(ins),
		b.ID, *b.RoomID, b.RoomName, b.Floor, b.BookedBy, b.Date, b.StartTime, b.EndTime,
		string(b.Status), b.Secret, createdAt(b.CreatedAt)); err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateBookingStatus stores status on the booking and returns the updated
// row.  MySQL reports zero affected rows for a no-op update, so existence is
// decided by reading the row back.
func (s *SQLStore) UpdateBookingStatus(ctx context.Context, id string, status model.Status) (model.Booking, error) {
	if _, err := s.db.ExecContext(ctx, s.rebind(`UPDATE bookings SET status = ? WHERE id = ?`), string(status), id); err != nil {
		return model.Booking{}, err
	}
	return s.GetBooking(ctx, id)
}

// DeleteBooking removes a booking.  It returns ErrBookingNotFound when no row
// was deleted.
func (s *SQLStore) DeleteBooking(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM bookings WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
