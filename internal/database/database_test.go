package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn, err := Options{Driver: "mysql", User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "rooms"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(db:3306)/rooms?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = Options{Driver: "mysql", User: "app", Host: "db", Port: "3306", Name: "rooms"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "app@tcp(db:3306)/rooms?charset=utf8mb4&parseTime=true&loc=UTC", dsn)

	dsn, err = Options{Driver: "postgres", User: "app", Pass: "p@ss", Host: "db", Port: "5432", Name: "rooms"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/rooms?sslmode=disable", dsn)

	dsn, err = Options{Driver: "postgres", User: "app", Host: "db", Port: "5432", Name: "rooms", SSLMode: "require"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@db:5432/rooms?sslmode=require", dsn)

	_, err = Options{Driver: "sqlite"}.DSN()
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmts, err := Schema("postgres")
	require.NoError(t, err)
	for _, stmt := range stmts {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db, "postgres"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	stmts, err := Schema("mysql")
	require.NoError(t, err)
	mock.ExpectExec(stmts[0]).WillReturnError(errors.New("access denied"))

	err = Migrate(context.Background(), db, "mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate step 1")
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Error(t, Migrate(context.Background(), db, "oracle"))
}
