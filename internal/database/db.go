package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Options describes how to reach the booking database.
type Options struct {
	Driver  string // "mysql" or "postgres"
	User    string
	Pass    string
	Host    string
	Port    string
	Name    string
	SSLMode string // postgres only; defaults to "disable"
}

// DSN renders the driver specific connection string.
func (o Options) DSN() (string, error) {
	switch o.Driver {
	case "mysql":
		auth := o.User
		if o.Pass != "" {
			auth = fmt.Sprintf("%s:%s", o.User, o.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, o.Host, o.Port, o.Name), nil
	case "postgres":
		sslmode := o.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(o.User, o.Pass),
			Host:     o.Host + ":" + o.Port,
			Path:     "/" + o.Name,
			RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
		}
		if o.Pass == "" {
			u.User = url.User(o.User)
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("database: unsupported driver %q", o.Driver)
}

// Open connects to the configured database and verifies the connection.
func Open(o Options) (*sql.DB, error) {
	dsn, err := o.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(o.Driver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
