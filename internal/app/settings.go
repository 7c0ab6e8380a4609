package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	Backend     string `yaml:"backend"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	SlotKey     string `yaml:"slot_key"`
	HTTPAddr    string `yaml:"http_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	TimeZone    string `yaml:"time_zone"`
}

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DefaultHTTPAddr is where "faultlog serve" listens when nothing is configured.
const DefaultHTTPAddr = "127.0.0.1:7373"

// Effective holds the runtime values after applying CLI overrides,
// environment variables, config.yaml and defaults, in that order.
type Effective struct {
	Backend     string         `json:"backend"`
	DatabaseURL string         `json:"-"`
	SlotKey     string         `json:"slot_key"`
	HTTPAddr    string         `json:"http_addr"`
	LogLevel    string         `json:"log_level"`
	LogFormat   string         `json:"log_format"`
	Location    *time.Location `json:"-"`
}

// EffectiveSettings resolves the runtime configuration. An unknown backend or
// time zone is an error.
func EffectiveSettings() (Effective, error) {
	s, err := LoadSettings()
	if err != nil {
		return Effective{}, err
	}

	eff := Effective{
		Backend:     firstNonEmpty(getBackendOverride(), os.Getenv("FAULTLOG_BACKEND"), s.Backend, BackendSQLite),
		DatabaseURL: firstNonEmpty(os.Getenv("FAULTLOG_DATABASE_URL"), s.DatabaseURL),
		SlotKey:     firstNonEmpty(s.SlotKey, faultlog.DefaultKey),
		HTTPAddr:    firstNonEmpty(s.HTTPAddr, DefaultHTTPAddr),
		LogLevel:    firstNonEmpty(os.Getenv("FAULTLOG_LOG_LEVEL"), s.LogLevel, "info"),
		LogFormat:   firstNonEmpty(s.LogFormat, "json"),
		Location:    time.Local,
	}
	eff.Backend = strings.ToLower(eff.Backend)

	switch eff.Backend {
	case BackendSQLite, BackendPostgres, BackendMemory:
	default:
		return Effective{}, fmt.Errorf("unknown backend %q (want sqlite, postgres or memory)", eff.Backend)
	}

	if tz := strings.TrimSpace(s.TimeZone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Effective{}, fmt.Errorf("invalid time_zone %q: %w", tz, err)
		}
		eff.Location = loc
	}

	return eff, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// overrideMu guards the process-wide CLI overrides.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	overrideMu      sync.RWMutex
	dbPathOverride  string
	backendOverride string
)

// SetDBPathOverride sets a process-wide database path override (--db-path).
func SetDBPathOverride(path string) {
	overrideMu.Lock()
	dbPathOverride = path
	overrideMu.Unlock()
}

// SetBackendOverride sets a process-wide backend override (--backend).
func SetBackendOverride(backend string) {
	overrideMu.Lock()
	backendOverride = backend
	overrideMu.Unlock()
}

func getDBPathOverride() string {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	return dbPathOverride
}

func getBackendOverride() string {
	overrideMu.RLock()
	defer overrideMu.RUnlock()
	return backendOverride
}

func configPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "faultlog", "config.yaml"),
		"config.yaml",
	}, nil
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/faultlog/config.yaml
// 2) /etc/faultlog/config.yaml
// 3) ./config.yaml
// Environment variables are handled by EffectiveSettings and GetDBPath.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		paths, err := configPaths()
		if err != nil {
			settingsErr = err
			return
		}
		for _, p := range paths {
			s, err := loadSettingsFile(p)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = fmt.Errorf("load %s: %w", p, err)
				return
			}
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path) //nolint:gosec // G304: fixed lookup paths
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
