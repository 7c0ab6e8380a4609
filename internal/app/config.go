package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/faultlog/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "faultlog"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# faultlog configuration
# Run: faultlog --help

# Storage backend: sqlite (default), postgres or memory.
# Can also be set via FAULTLOG_BACKEND or --backend.
# backend: sqlite

# SQLite database location.
# Can also be set via FAULTLOG_DB_PATH or --db-path.
# db_path: ~/.config/faultlog/faultlog.db

# Postgres connection string when backend is postgres.
# Can also be set via FAULTLOG_DATABASE_URL.
# database_url: postgres://localhost:5432/faultlog

# Name of the slot the fault records are kept under.
# slot_key: fault_records

# Listen address for "faultlog serve".
# http_addr: 127.0.0.1:7373

# Logging: level debug|info|warn|error, format json|text.
# log_level: info
# log_format: json

# IANA zone used when rendering record times (default: local time).
# time_zone: Europe/Berlin
`
