package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationLock_AcquireRelease(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "faults.db")

	first := newMigrationLock(dbPath)
	require.NoError(t, first.acquire())
	require.NoError(t, first.acquire())
	_, err := os.Stat(dbPath + ".migrate.lock")
	require.NoError(t, err)

	first.release()
	first.release()

	second := newMigrationLock(dbPath)
	require.NoError(t, second.acquire())
	second.release()
}
