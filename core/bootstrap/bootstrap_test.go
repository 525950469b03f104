package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/examscores/scorebot/core/config"
	coredatabase "github.com/examscores/scorebot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func memoryDB(coredatabase.Config) (*sqlx.DB, error) {
	return sqlx.Open("sqlite3", ":memory:")
}

func TestRunRequiresInputs(t *testing.T) {
	_, err := Run(Options{Migrations: fstest.MapFS{}})
	assert.ErrorContains(t, err, "nil config")

	_, err = Run(Options{Config: &coreconfig.Config{}})
	assert.ErrorContains(t, err, "nil migrations")
}

func TestRunPipeline(t *testing.T) {
	var steps []string
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: coredatabase.DriverSQLite},
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Connect: func(c coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return memoryDB(c)
		},
		Migrate: func(*sqlx.DB, coredatabase.Config, fs.FS) error {
			steps = append(steps, "migrate")
			return nil
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.DB.Close() })
	assert.Equal(t, []string{"logger", "connect", "migrate"}, steps)
}

func TestRunClosesDBWhenMigrationFails(t *testing.T) {
	var db *sqlx.DB
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Migrations: fstest.MapFS{},
		LoggerInit: noLogger,
		Connect: func(c coredatabase.Config) (*sqlx.DB, error) {
			var err error
			db, err = memoryDB(c)
			return db, err
		},
		Migrate: func(*sqlx.DB, coredatabase.Config, fs.FS) error { return errors.New("dirty") },
	})
	require.ErrorContains(t, err, "migrations failed")
	assert.Error(t, db.Ping(), "db must be closed")
}

func TestRunStopsOnConnectError(t *testing.T) {
	migrated := false
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Migrations: fstest.MapFS{},
		LoggerInit: noLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, errors.New("refused") },
		Migrate:    func(*sqlx.DB, coredatabase.Config, fs.FS) error { migrated = true; return nil },
	})
	assert.ErrorContains(t, err, "refused")
	assert.False(t, migrated)
}
