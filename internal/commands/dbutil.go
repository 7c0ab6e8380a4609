package commands

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/app"
	"github.com/dotcommander/faultlog/internal/metrics"
	"github.com/dotcommander/faultlog/internal/models"
	"github.com/dotcommander/faultlog/internal/output"
	"github.com/dotcommander/faultlog/internal/store"
	"github.com/dotcommander/faultlog/internal/store/postgres"
	"github.com/dotcommander/faultlog/pkg/faultlog"
	"github.com/dotcommander/faultlog/pkg/memory"
)

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

// session is an open fault store plus the slot and settings behind it.
type session struct {
	Store    *faultlog.Store
	Slot     faultlog.Slot
	Settings app.Effective
	// Target describes where the slot lives: a file path, "postgres" or "memory".
	Target string
	// DB is set for the sqlite backend only.
	DB *sql.DB

	closeFn func()
}

func (s *session) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

func openSession(ctx context.Context) (*session, error) {
	eff, err := app.EffectiveSettings()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	s := &session{Settings: eff}

	switch eff.Backend {
	case app.BackendPostgres:
		if eff.DatabaseURL == "" {
			return nil, &store.SlotUnavailableError{Backend: eff.Backend, Target: "database_url", Err: errors.New("database_url is not set")}
		}
		pool, err := postgres.NewPool(ctx, eff.DatabaseURL)
		if err != nil {
			return nil, &store.SlotUnavailableError{Backend: eff.Backend, Target: "database_url", Err: err}
		}
		if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, &store.SlotUnavailableError{Backend: eff.Backend, Target: "database_url", Err: err}
		}
		s.Slot = postgres.NewSlot(pool)
		s.Target = app.BackendPostgres
		s.closeFn = pool.Close
	case app.BackendMemory:
		s.Slot = memory.NewSlots()
		s.Target = app.BackendMemory
	default:
		dbPath, err := app.GetDBPath()
		if err != nil {
			return nil, err
		}
		db, err := store.InitDBWithPath(dbPath)
		if err != nil {
			return nil, &store.SlotUnavailableError{Backend: eff.Backend, Target: dbPath, Err: err}
		}
		s.Slot = store.NewSlot(db)
		s.Target = dbPath
		s.DB = db
		s.closeFn = func() { _ = db.Close() }
	}

	metrics.Init()
	s.Store = faultlog.New(s.Slot,
		faultlog.WithLogger(logger),
		faultlog.WithKey(eff.SlotKey),
		faultlog.WithObserver(metrics.Observer{}),
	)
	return s, nil
}

func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return cmdErr(err)
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return cmdErr(err)
	}
	return nil
}

func printSuccess(cmd *cobra.Command, data any) error {
	cfg := output.DefaultConfig()
	cfg.Writer = cmd.OutOrStdout()
	return output.PrintWith(cfg, output.Success(data))
}

func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	if re, ok := models.AsRecoverable(err); ok {
		attrs = append(attrs, "error_code", re.ErrorCode(), "suggested_action", re.SuggestedAction())
	}
	slog.Error("command error", attrs...)
	_ = output.PrintError(err)
	return printedError{err: err}
}
