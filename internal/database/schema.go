package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Dates and clock times are stored as the strings callers submit
// (YYYY-MM-DD, HH:MM) so that lexical order equals chronological order and
// no timezone conversion ever touches them.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id         VARCHAR(64)  NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		floor      VARCHAR(255) NOT NULL DEFAULT '',
		capacity   INT          NOT NULL DEFAULT 0,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             VARCHAR(64)  NOT NULL PRIMARY KEY,
		room_id        VARCHAR(64)  NULL,
		room_name      VARCHAR(255) NOT NULL DEFAULT '',
		floor          VARCHAR(255) NOT NULL DEFAULT '',
		booked_by      VARCHAR(255) NOT NULL,
		date           CHAR(10)     NOT NULL,
		start_time     CHAR(5)      NOT NULL,
		end_time       CHAR(5)      NOT NULL,
		status         VARCHAR(16)  NULL,
		booking_secret VARCHAR(255) NOT NULL,
		created_at     DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_bookings_room_date (room_id, date, start_time),
		INDEX idx_bookings_date (date, start_time),
		CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id         VARCHAR(64)  PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		floor      VARCHAR(255) NOT NULL DEFAULT '',
		capacity   INTEGER      NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             VARCHAR(64)  PRIMARY KEY,
		room_id        VARCHAR(64)  NULL REFERENCES rooms(id) ON DELETE SET NULL,
		room_name      VARCHAR(255) NOT NULL DEFAULT '',
		floor          VARCHAR(255) NOT NULL DEFAULT '',
		booked_by      VARCHAR(255) NOT NULL,
		date           CHAR(10)     NOT NULL,
		start_time     CHAR(5)      NOT NULL,
		end_time       CHAR(5)      NOT NULL,
		status         VARCHAR(16)  NULL,
		booking_secret VARCHAR(255) NOT NULL,
		created_at     TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room_date ON bookings (room_id, date, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings (date, start_time)`,
}

// Schema returns the DDL statements for driver.
func Schema(driver string) ([]string, error) {
	switch driver {
	case "mysql":
		return mysqlSchema, nil
	case "postgres":
		return postgresSchema, nil
	}
	return nil, fmt.Errorf("database: no schema for driver %q", driver)
}

// Migrate creates the rooms and bookings tables if they do not exist.  Each
// statement runs separately since the MySQL driver rejects multi-statement
// exec by default.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	stmts, err := Schema(driver)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database: migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
