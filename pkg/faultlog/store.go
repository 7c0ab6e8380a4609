package faultlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dotcommander/faultlog/pkg/memory"
)

// ErrCorruptLog is reported to the diagnostic sink when the stored log cannot be
// decoded.
var ErrCorruptLog = errors.New("stored fault log is not a JSON array of records")

// Store is the single authority over one durable record log. It persists the log
// through a Slot and broadcasts additions and clears to its subscribers.
//
// No Store method returns an error or panics: storage faults are logged and the
// affected call degrades to a no-op for persistence.
type Store struct {
	slot    Slot
	key     string
	logger  *slog.Logger
	obs     Observer
	timeout time.Duration

	// mu guards the mutation queue. Mutations are applied one at a time, in
	// submission order, by whichever caller found the queue idle.
	mu       sync.Mutex
	pending  []mutation
	draining bool
	drainer  uint64

	subs subscribers
}

type mutationKind int

const (
	mutationAppend mutationKind = iota
	mutationClear
)

type mutation struct {
	kind   mutationKind
	record Record
	// done is closed once the mutation has been applied. Nil for calls made
	// by the draining goroutine itself.
	done chan struct{}
}

// New builds a Store over slot. A nil slot falls back to an in-memory slot, which
// keeps the log only for the lifetime of the process.
func New(slot Slot, opts ...Option) *Store {
	if slot == nil {
		slot = memory.NewSlots()
	}
	s := &Store{
		slot:    slot,
		key:     DefaultKey,
		logger:  slog.Default(),
		obs:     nopObserver{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the slot name the log is stored under.
func (s *Store) Key() string { return s.key }

// Append prepends r to the persisted log and then notifies every subscriber.
//
// A call made while another goroutine is applying mutations waits until its own
// record is persisted and delivered. A call made from inside a subscriber
// callback or the slot is queued and applied, in order, before the outer call
// returns.
func (s *Store) Append(r Record) {
	s.submit(mutation{kind: mutationAppend, record: r})
}

// Clear removes the persisted log and then notifies every subscriber.
func (s *Store) Clear() {
	s.submit(mutation{kind: mutationClear})
}

// Load returns the persisted log, newest first. Missing or undecodable data yields
// an empty slice.
func (s *Store) Load() []Record {
	records, err := s.load()
	if err != nil {
		s.storageFault("load", "failed to load fault log", err)
		return []Record{}
	}
	if records == nil {
		return []Record{}
	}
	return records
}

func (s *Store) submit(m mutation) {
	gid := goroutineID()

	s.mu.Lock()
	if s.draining {
		if s.drainer == gid {
			s.pending = append(s.pending, m)
			s.mu.Unlock()
			return
		}
		m.done = make(chan struct{})
		s.pending = append(s.pending, m)
		s.mu.Unlock()
		<-m.done
		return
	}
	s.pending = append(s.pending, m)
	s.draining = true
	s.drainer = gid
	s.mu.Unlock()

	s.drain()
}

func (s *Store) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.drainer = 0
			s.mu.Unlock()
			return
		}
		m := s.pending[0]
		s.pending[0] = mutation{}
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.applyIsolated(m)
		if m.done != nil {
			close(m.done)
		}
	}
}

func (s *Store) applyIsolated(m mutation) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("fault log mutation panicked", "key", s.key, "panic", fmt.Sprint(v))
		}
	}()
	s.apply(m)
}

func (s *Store) apply(m mutation) {
	switch m.kind {
	case mutationAppend:
		s.persistAppend(m.record)
		s.observe(func() { s.obs.Appended(m.record.Kind) })
		s.subs.notifyAdded(s, m.record)
	case mutationClear:
		s.persistClear()
		s.observe(s.obs.Cleared)
		s.subs.notifyCleared(s)
	}
}

func (s *Store) persistAppend(r Record) {
	defer s.recoverStorage("append")

	ctx, cancel := s.opContext()
	defer cancel()

	existing, err := s.read(ctx)
	if err != nil {
		// A corrupt log is left in place so it can still be inspected.
		s.storageFault("append", "failed to read fault log", err)
		return
	}

	next := make([]Record, 0, len(existing)+1)
	next = append(next, r)
	next = append(next, existing...)

	b, err := json.Marshal(next)
	if err != nil {
		s.storageFault("append", "failed to encode fault log", err)
		return
	}
	if err := s.slot.Write(ctx, s.key, b); err != nil {
		s.storageFault("append", "failed to write fault log", err)
	}
}

func (s *Store) persistClear() {
	defer s.recoverStorage("clear")

	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.slot.Remove(ctx, s.key); err != nil {
		s.storageFault("clear", "failed to clear fault log", err)
	}
}

func (s *Store) load() (records []Record, err error) {
	defer func() {
		if v := recover(); v != nil {
			records, err = nil, fmt.Errorf("slot panicked: %v", v)
		}
	}()

	ctx, cancel := s.opContext()
	defer cancel()
	return s.read(ctx)
}

func (s *Store) read(ctx context.Context) ([]Record, error) {
	raw, ok, err := s.slot.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptLog, err)
	}
	return records, nil
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// recoverStorage must be deferred directly by the persistence method it guards.
func (s *Store) recoverStorage(op string) {
	if v := recover(); v != nil {
		s.storageFault(op, "fault log storage panicked", fmt.Errorf("panic: %v", v))
	}
}

func (s *Store) storageFault(op, msg string, err error) {
	s.logger.Warn(msg, "op", op, "key", s.key, "error", err)
	s.observe(func() { s.obs.StorageFault(op) })
}

func (s *Store) observe(fn func()) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("fault log observer panicked", "panic", fmt.Sprint(v))
		}
	}()
	fn()
}
