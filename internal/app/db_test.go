package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetSettingsStateForTest() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsErr = nil
	SetDBPathOverride("")
	SetBackendOverride("")
}

func isolate(t *testing.T) string {
	t.Helper()
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FAULTLOG_DB_PATH", "")
	t.Setenv("FAULTLOG_BACKEND", "")
	t.Setenv("FAULTLOG_DATABASE_URL", "")
	t.Setenv("FAULTLOG_LOG_LEVEL", "")
	return home
}

func writeUserConfig(t *testing.T, home, content string) {
	t.Helper()
	path := filepath.Join(home, ".config", "faultlog", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestGetDBPath_PrioritizesCLIOverride(t *testing.T) {
	home := isolate(t)
	t.Setenv("FAULTLOG_DB_PATH", filepath.Join(home, "env", "faultlog.db"))

	overridePath := filepath.Join(home, "cli", "faultlog.db")
	SetDBPathOverride(overridePath)

	resolved, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, overridePath, resolved)
}

func TestGetDBPath_UsesEnvWithoutOverride(t *testing.T) {
	home := isolate(t)
	envPath := filepath.Join(home, "env", "faultlog.db")
	t.Setenv("FAULTLOG_DB_PATH", envPath)

	resolved, source, err := ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, envPath, resolved)
	require.Equal(t, "env(FAULTLOG_DB_PATH)", source)
}

func TestGetDBPath_UsesConfigThenDefault(t *testing.T) {
	home := isolate(t)

	resolved, source, err := ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "faultlog", "faultlog.db"), resolved)
	require.Equal(t, "default(~/.config/faultlog/faultlog.db)", source)

	writeUserConfig(t, home, "db_path: ~/data/faults.db\n")
	resolved, source, err = ResolveDBPathDetailed()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "data", "faults.db"), resolved)
	require.Contains(t, source, "config(")
	require.DirExists(t, filepath.Join(home, "data"))
}

func TestEnsureDBDir_CreatesParentDirectories(t *testing.T) {
	base := t.TempDir()
	dbPath := filepath.Join(base, "nested", "deep", "faultlog.db")

	resolved, err := EnsureDBDir(dbPath)
	require.NoError(t, err)
	require.Equal(t, dbPath, resolved)
	require.DirExists(t, filepath.Dir(dbPath))
}
