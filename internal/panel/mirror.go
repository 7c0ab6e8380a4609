// Package panel keeps an observer-side copy of the fault log in step with a
// store and presents it in the terminal.
package panel

import (
	"io"
	"sync"

	"github.com/dotcommander/faultlog/internal/report"
	"github.com/dotcommander/faultlog/pkg/faultlog"
)

// Source is the part of *faultlog.Store a mirror needs.
type Source interface {
	Load() []faultlog.Record
	Clear()
	Subscribe(onAdded func(faultlog.Record), onCleared func()) (unsubscribe func())
}

var _ Source = (*faultlog.Store)(nil)

// AttachOption configures a Mirror.
type AttachOption func(*Mirror)

// OnChange registers fn to run after every change to the mirrored list. It
// runs on whatever goroutine delivered the change and must not block.
func OnChange(fn func()) AttachOption {
	return func(m *Mirror) { m.onChange = fn }
}

// Mirror is an in-memory copy of a store's records, newest first. It is
// seeded from Load and then follows the store's notifications.
type Mirror struct {
	src      Source
	onChange func()

	mu      sync.Mutex
	records []faultlog.Record

	detachOnce  sync.Once
	unsubscribe func()
}

// Attach seeds a mirror from src and subscribes it to src's notifications.
// Call Detach when done.
func Attach(src Source, opts ...AttachOption) *Mirror {
	m := &Mirror{src: src}
	for _, opt := range opts {
		opt(m)
	}
	m.records = src.Load()
	m.unsubscribe = src.Subscribe(m.added, m.cleared)
	return m
}

func (m *Mirror) added(r faultlog.Record) {
	m.mu.Lock()
	m.records = append([]faultlog.Record{r}, m.records...)
	m.mu.Unlock()
	m.changed()
}

func (m *Mirror) cleared() {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	m.changed()
}

func (m *Mirror) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}

// Records returns a copy of the mirrored records, newest first.
func (m *Mirror) Records() []faultlog.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]faultlog.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of mirrored records.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Reload replaces the mirrored records with a fresh Load.
func (m *Mirror) Reload() {
	records := m.src.Load()
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
	m.changed()
}

// Clear clears the store only if confirm returns true, and reports whether it
// did. A nil confirm never clears.
func (m *Mirror) Clear(confirm func() bool) bool {
	if confirm == nil || !confirm() {
		return false
	}
	m.src.Clear()
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	return true
}

// Export writes the mirrored records as the text report.
func (m *Mirror) Export(w io.Writer, opts report.Options) error {
	return report.Write(w, m.Records(), opts)
}

// Detach stops following the store. Safe to call more than once.
func (m *Mirror) Detach() {
	m.detachOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
	})
}
