// Package storagetest opens migrated SQLite stores for tests.
package storagetest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	coredatabase "github.com/examscores/scorebot/core/database"
	"github.com/examscores/scorebot/internal/storage"
)

// Open returns a fresh in-memory database with the full schema applied. It is closed with the test.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	return open(t, ":memory:")
}

// OpenFile is Open over a database file in a temp dir, served by a full connection pool.
func OpenFile(t testing.TB) *sqlx.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "scores.db"))
}

func open(t testing.TB, path string) *sqlx.DB {
	t.Helper()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: path, WaitSeconds: 1}
	db, err := coredatabase.Connect(cfg)
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := coredatabase.RunMigrations(db, cfg, storage.Migrations()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// New returns a Store over Open.
func New(t testing.TB) *storage.Store {
	t.Helper()
	return storage.New(Open(t))
}
