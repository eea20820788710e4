package db

import (
	"context"
	"fmt"
	"time"

	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	startupAttempts = 5
	startupBackoff  = 2 * time.Second
)

// Connect is NewPool retried with quadratic backoff, for containers that
// start before Postgres accepts connections.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := retry(ctx, log, "database connection", startupAttempts, startupBackoff, func() error {
		p, err := NewPool(ctx, cfg)
		pool = p
		return err
	})
	return pool, err
}

// MigrateWithRetry runs Migrate under the same backoff as Connect.
func MigrateWithRetry(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	return retry(ctx, log, "database migrations", startupAttempts, startupBackoff, func() error {
		return Migrate(ctx, pool, log)
	})
}

func retry(ctx context.Context, log *logger.Logger, op string, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Warn("startup step failed", "operation", op, "attempt", attempt, "error", err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*attempt) * backoff):
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", op, attempts, err)
}
