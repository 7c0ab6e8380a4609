package store

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// migrationLock serializes schema migrations between processes that open the
// same database file.
type migrationLock struct {
	path string
	f    *os.File
}

func newMigrationLock(dbPath string) *migrationLock {
	return &migrationLock{path: dbPath + ".migrate.lock"}
}

// acquire blocks until the exclusive lock is held.
func (l *migrationLock) acquire() error {
	if l.f != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: derived from the configured db path
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return fmt.Errorf("flock %s: %w", l.path, err)
	}
	l.f = f
	return nil
}

// release drops the lock. Calling it without holding the lock is a no-op.
func (l *migrationLock) release() {
	if l.f == nil {
		return
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
	l.f = nil
}
