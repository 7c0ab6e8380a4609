package faultlog

import (
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeout bounds each slot call made by a Store.
const DefaultTimeout = 5 * time.Second

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic sink for storage and subscriber faults.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithKey sets the slot name the record log is stored under.
func WithKey(key string) Option {
	return func(s *Store) {
		if k := strings.TrimSpace(key); k != "" {
			s.key = k
		}
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.obs = o
		}
	}
}

// WithTimeout bounds every slot call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}
