// Package memory provides a process-local key/value slot store with an optional
// byte quota. It backs fault logs that do not need to survive a restart and lets
// tests reproduce a full durable store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrQuotaExceeded is returned by Write when the new value would push the total
// stored bytes over the configured quota.
var ErrQuotaExceeded = errors.New("memory slot quota exceeded")

// Entry represents a stored slot value.
type Entry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}

type slotOptions struct {
	quota int
}

// Option configures a Slots store.
type Option func(*slotOptions)

// WithQuota caps the total number of value bytes held across all keys.
// Zero or negative means unbounded.
func WithQuota(bytes int) Option {
	return func(o *slotOptions) {
		o.quota = bytes
	}
}

// Slots is a mutex-guarded map of named slots.
type Slots struct {
	mu      sync.Mutex
	quota   int
	used    int
	entries map[string]*Entry
}

// NewSlots returns an empty slot store.
func NewSlots(opts ...Option) *Slots {
	o := &slotOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return &Slots{
		quota:   o.quota,
		entries: make(map[string]*Entry),
	}
}

// Read returns a copy of the value stored under key.
func (s *Slots) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), e.Value...), true, nil
}

// Write stores a copy of value under key, replacing any previous value.
func (s *Slots) Write(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := 0
	e, ok := s.entries[key]
	if ok {
		prev = len(e.Value)
	}
	if s.quota > 0 && s.used-prev+len(value) > s.quota {
		return fmt.Errorf("write %q (%d bytes, quota %d): %w", key, len(value), s.quota, ErrQuotaExceeded)
	}

	if !ok {
		e = &Entry{Key: key, CreatedAt: now}
		s.entries[key] = e
	}
	e.Value = append([]byte(nil), value...)
	e.UpdatedAt = now
	s.used += len(value) - prev
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Slots) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.used -= len(e.Value)
		delete(s.entries, key)
	}
	return nil
}

// Get returns a copy of the entry stored under key.
func (s *Slots) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	out := *e
	out.Value = append([]byte(nil), e.Value...)
	return out, true
}

// Keys returns the stored keys in sorted order.
func (s *Slots) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Used returns the number of value bytes currently stored.
func (s *Slots) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}
