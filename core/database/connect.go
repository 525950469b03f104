package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/examscores/scorebot/core/logger"
)

// Connect opens the database, waits for it to answer pings and configures the pool.
func Connect(cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		logConnectFailure(cfg, "db.open", err, time.Since(start))
		return nil, fmt.Errorf("db open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WaitSeconds)*time.Second)
	defer cancel()
	if err := WaitForPing(ctx, db, 2*time.Second); err != nil {
		logConnectFailure(cfg, "db.ping", err, time.Since(start))
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	took := time.Since(start)

	pool := cfg.MaxConnections
	if cfg.InMemory() {
		// every new connection would see its own empty database
		pool = 1
	}
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)
	logger.DB.Debug("db pool configured",
		slog.String("event", "db.pool"),
		slog.Int("pool_open", pool),
	)

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", cfg.Driver),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", dbName(cfg)),
		slog.Int("pool_open", pool),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return db, nil
}

// WaitForPing pings db every interval until it answers or ctx is done.
func WaitForPing(ctx context.Context, db *sqlx.DB, interval time.Duration) error {
	var lastErr error
	for {
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return nil
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		case <-timer.C:
		}
	}
}

func dbName(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Path
	}
	return cfg.Name
}

func logConnectFailure(cfg Config, event string, err error, took time.Duration) {
	logger.DB.Error("db connect failed",
		slog.String("event", event),
		slog.String("driver", cfg.Driver),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", dbName(cfg)),
		slog.Duration("duration", logger.RoundMS(took)),
		slog.String("err", err.Error()),
	)
}
