// Package bootstrap brings up the infrastructure a binary needs before it serves.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/examscores/scorebot/core/config"
	coredatabase "github.com/examscores/scorebot/core/database"
	"github.com/examscores/scorebot/core/logger"
)

// Options configure Run. The function fields default to the real logger and database setup.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	// Migrations holds one directory of *.sql files per driver name.
	Migrations fs.FS

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(*sqlx.DB, coredatabase.Config, fs.FS) error
}

// Result is what Run brought up. The caller owns DB.
type Result struct {
	DB *sqlx.DB
}

func (o *Options) setDefaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Run initializes logging, opens the database and migrates it.
// The database is closed again when migration fails.
func Run(opts Options) (*Result, error) {
	switch {
	case opts.Config == nil:
		return nil, errors.New("bootstrap: nil config provided")
	case opts.Migrations == nil:
		return nil, errors.New("bootstrap: nil migrations provided")
	}
	opts.setDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	start := time.Now()
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.Migrate(db, opts.Database, opts.Migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	logger.LogEvent(context.Background(), logger.DB, slog.LevelInfo, "bootstrap.ready",
		slog.String("driver", opts.Database.Driver),
		slog.Duration("duration", logger.Took(start)),
	)
	return &Result{DB: db}, nil
}
