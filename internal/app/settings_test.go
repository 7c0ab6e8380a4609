package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings_PrefersUserConfigOverLocal(t *testing.T) {
	home := isolate(t)

	workdir := t.TempDir()
	t.Chdir(workdir)

	writeUserConfig(t, home, "db_path: /tmp/from-user.db\n")
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("db_path: /tmp/from-local.db\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-user.db", s.DBPath)
}

func TestLoadSettings_FallsBackToLocalConfig(t *testing.T) {
	isolate(t)

	workdir := t.TempDir()
	t.Chdir(workdir)
	require.NoError(t, os.WriteFile(filepath.Join(workdir, "config.yaml"), []byte("backend: memory\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "memory", s.Backend)
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	home := isolate(t)
	writeUserConfig(t, home, "db_path: [")

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettingsFile_ReadsAllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend: postgres\n" +
		"db_path: /tmp/read.db\n" +
		"database_url: postgres://localhost/faults\n" +
		"slot_key: debug_error_logs\n" +
		"http_addr: :9000\n" +
		"log_level: debug\n" +
		"log_format: text\n" +
		"time_zone: UTC\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, Settings{
		Backend:     "postgres",
		DBPath:      "/tmp/read.db",
		DatabaseURL: "postgres://localhost/faults",
		SlotKey:     "debug_error_logs",
		HTTPAddr:    ":9000",
		LogLevel:    "debug",
		LogFormat:   "text",
		TimeZone:    "UTC",
	}, s)
}

func TestEffectiveSettings_Defaults(t *testing.T) {
	isolate(t)
	t.Chdir(t.TempDir())

	eff, err := EffectiveSettings()
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, eff.Backend)
	require.Equal(t, "fault_records", eff.SlotKey)
	require.Equal(t, DefaultHTTPAddr, eff.HTTPAddr)
	require.Equal(t, "info", eff.LogLevel)
	require.Equal(t, "json", eff.LogFormat)
	require.Equal(t, time.Local, eff.Location)
}

func TestEffectiveSettings_Precedence(t *testing.T) {
	home := isolate(t)
	t.Chdir(t.TempDir())
	writeUserConfig(t, home, "backend: postgres\ndatabase_url: postgres://config\nlog_level: warn\ntime_zone: UTC\n")

	eff, err := EffectiveSettings()
	require.NoError(t, err)
	require.Equal(t, BackendPostgres, eff.Backend)
	require.Equal(t, "postgres://config", eff.DatabaseURL)
	require.Equal(t, "warn", eff.LogLevel)
	require.Equal(t, time.UTC, eff.Location)

	t.Setenv("FAULTLOG_BACKEND", "Memory")
	t.Setenv("FAULTLOG_DATABASE_URL", "postgres://env")
	t.Setenv("FAULTLOG_LOG_LEVEL", "debug")
	eff, err = EffectiveSettings()
	require.NoError(t, err)
	require.Equal(t, BackendMemory, eff.Backend)
	require.Equal(t, "postgres://env", eff.DatabaseURL)
	require.Equal(t, "debug", eff.LogLevel)

	SetBackendOverride("sqlite")
	eff, err = EffectiveSettings()
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, eff.Backend)
}

func TestEffectiveSettings_RejectsUnknownValues(t *testing.T) {
	home := isolate(t)
	t.Chdir(t.TempDir())

	SetBackendOverride("redis")
	_, err := EffectiveSettings()
	require.ErrorContains(t, err, "unknown backend")

	SetBackendOverride("")
	writeUserConfig(t, home, "time_zone: Mars/Olympus\n")
	resetSettingsStateForTest()
	_, err = EffectiveSettings()
	require.ErrorContains(t, err, "invalid time_zone")
}
