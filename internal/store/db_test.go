package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "faultlog.db")
}

func TestInitDBWithPath(t *testing.T) {
	dbPath := setupTestDB(t)

	db, err := InitDBWithPath(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, statErr := os.Stat(dbPath)
	require.NoError(t, statErr, "database file was not created")

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='slots'").Scan(&name))

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	current, latest, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, int64(1), latest)
	require.Equal(t, latest, current)
}

func TestInitDBWithPath_ReopenIsIdempotent(t *testing.T) {
	dbPath := setupTestDB(t)

	db, err := InitDBWithPath(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDBWithPath(dbPath)
	require.NoError(t, err)
	defer db.Close()

	current, latest, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, latest, current)
}

func TestInitDBWithPath_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "faultlog.db")

	db, err := InitDBWithPath(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, statErr := os.Stat(dbPath)
	require.NoError(t, statErr)
}

func TestBusyTimeoutFromEnv(t *testing.T) {
	t.Setenv("FAULTLOG_BUSY_TIMEOUT_MS", "250")
	require.Equal(t, 250, busyTimeoutMS())

	t.Setenv("FAULTLOG_BUSY_TIMEOUT_MS", "nope")
	require.Equal(t, defaultBusyTimeoutMS, busyTimeoutMS())

	t.Setenv("FAULTLOG_BUSY_TIMEOUT_MS", "-3")
	require.Equal(t, defaultBusyTimeoutMS, busyTimeoutMS())
}

func TestNormalizeSQLiteDSN(t *testing.T) {
	require.Equal(t, "file:/tmp/x.db?mode=rwc", normalizeSQLiteDSN("/tmp/x.db"))
	require.Equal(t, "file::memory:?cache=shared", normalizeSQLiteDSN(":memory:"))
	require.Equal(t, "file:custom?mode=ro", normalizeSQLiteDSN("file:custom?mode=ro"))
}
