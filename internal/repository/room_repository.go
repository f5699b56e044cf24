package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

const roomColumns = `id, name, floor, capacity, created_at`

func scanRoom(sc scanner) (model.Room, error) {
	var r model.Room
	err := sc.Scan(&r.ID, &r.Name, &r.Floor, &r.Capacity, &r.CreatedAt)
	return r, err
}

// ListRooms returns every room ordered by floor, then name.
func (s *SQLStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY floor, name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Room{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRoom retrieves a room by id.  It returns ErrRoomNotFound when no row
// matches.
func (s *SQLStore) GetRoom(ctx context.Context, id string) (model.Room, error) {
	r, err := scanRoom(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+roomColumns+` FROM rooms WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, err
	}
	return r, nil
}

// EnsureRoom inserts room unless its id already exists, then reads the stored
// row back.  Concurrent callers provisioning the same id all succeed.
func (s *SQLStore) EnsureRoom(ctx context.Context, room model.Room) (model.Room, error) {
	q := `INSERT IGNORE INTO rooms (id, name, floor, capacity, created_at) VALUES (?, ?, ?, ?, ?)`
	if s.dialect == DialectPostgres {
		q = `INSERT INTO rooms (id, name, floor, capacity, created_at) VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(q), room.ID, room.Name, room.Floor, room.Capacity, createdAt(room.CreatedAt)); err != nil {
		return model.Room{}, err
	}
	return s.GetRoom(ctx, room.ID)
}

// CreateRoom inserts a new room.  It returns ErrDuplicate if the id is taken.
func (s *SQLStore) CreateRoom(ctx context.Context, room model.Room) (model.Room, error) {
	const q = `INSERT INTO rooms (id, name, floor, capacity, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, s.rebind(q), room.ID, room.Name, room.Floor, room.Capacity, createdAt(room.CreatedAt)); err != nil {
		if isDuplicate(err) {
			return model.Room{}, ErrDuplicate
		}
		return model.Room{}, err
	}
	return s.GetRoom(ctx, room.ID)
}

// UpsertRoom inserts room or updates name, floor and capacity of the row with
// the same id.  created_at is left untouched on update.
func (s *SQLStore) UpsertRoom(ctx context.Context, room model.Room) (model.Room, error) {
	q := `INSERT INTO rooms (id, name, floor, capacity, created_at) VALUES (?, ?, ?, ?, ?)
	      ON DUPLICATE KEY UPDATE name = VALUES(name), floor = VALUES(floor), capacity = VALUES(capacity)`
	if s.dialect == DialectPostgres {
		q = `INSERT INTO rooms (id, name, floor, capacity, created_at) VALUES (?, ?, ?, ?, ?)
	      ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, floor = EXCLUDED.floor, capacity = EXCLUDED.capacity`
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(q), room.ID, room.Name, room.Floor, room.Capacity, createdAt(room.CreatedAt)); err != nil {
		return model.Room{}, err
	}
	return s.GetRoom(ctx, room.ID)
}

// DeleteRoom removes a room.  Bookings referencing it keep their copied name
// and floor; the foreign key sets their room_id to NULL.
func (s *SQLStore) DeleteRoom(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM rooms WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func createdAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
