package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaLockID int64 = 0x46415554_4c4f4753 // "FAUTLOGS"

const createSlotsTable = `
	CREATE TABLE IF NOT EXISTS fault_slots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureSchema creates the fault_slots table if needed. Concurrent callers are
// serialized with an advisory lock.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if pool == nil {
		return errors.New("nil database pool")
	}
	if logger == nil {
		logger = slog.Default()
	}

	started := time.Now()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire db connection for schema bootstrap: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema bootstrap lock: %w", err)
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, unlockErr := conn.Exec(unlockCtx, `SELECT pg_advisory_unlock($1)`, schemaLockID); unlockErr != nil {
			logger.Error("schema bootstrap unlock failed", "error", unlockErr)
		}
	}()

	if _, err := conn.Exec(ctx, createSlotsTable); err != nil {
		return fmt.Errorf("create fault_slots table: %w", err)
	}

	logger.Debug("schema bootstrap complete", "duration_ms", time.Since(started).Milliseconds())

	return SchemaReady(ctx, pool)
}

// SchemaReady reports whether fault_slots exists.
func SchemaReady(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("nil database pool")
	}

	var relationName *string
	if err := pool.QueryRow(ctx, `SELECT to_regclass($1)::text`, "public.fault_slots").Scan(&relationName); err != nil {
		return fmt.Errorf("check table fault_slots: %w", err)
	}
	if relationName == nil || strings.TrimSpace(*relationName) == "" {
		return errors.New("required table missing: fault_slots")
	}
	return nil
}
