package faultlog

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

type subscriber struct {
	onAdded   func(Record)
	onCleared func()
	active    atomic.Bool
}

// subscribers is the per-store notification channel.
type subscribers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*subscriber
}

// Subscribe registers callbacks for "record added" and "records cleared"
// notifications. Either callback may be nil. The returned function deregisters
// both; it is idempotent, and once it returns no further notification reaches
// the callbacks.
//
// Callbacks run synchronously on the goroutine that applies the mutation. A
// panicking callback is logged and does not affect other subscribers.
func (s *Store) Subscribe(onAdded func(Record), onCleared func()) (unsubscribe func()) {
	sub := &subscriber{onAdded: onAdded, onCleared: onCleared}
	sub.active.Store(true)

	s.subs.mu.Lock()
	if s.subs.byID == nil {
		s.subs.byID = make(map[uint64]*subscriber)
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.byID[id] = sub
	s.subs.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			s.subs.mu.Lock()
			delete(s.subs.byID, id)
			s.subs.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	return len(s.subs.byID)
}

// snapshot returns live subscribers in registration order.
func (ss *subscribers) snapshot() []*subscriber {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ids := make([]uint64, 0, len(ss.byID))
	for id := range ss.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		out = append(out, ss.byID[id])
	}
	return out
}

func (ss *subscribers) notifyAdded(s *Store, r Record) {
	for _, sub := range ss.snapshot() {
		if sub.onAdded == nil || !sub.active.Load() {
			continue
		}
		s.deliver("record_added", func() { sub.onAdded(r) })
	}
}

func (ss *subscribers) notifyCleared(s *Store) {
	for _, sub := range ss.snapshot() {
		if sub.onCleared == nil || !sub.active.Load() {
			continue
		}
		s.deliver("records_cleared", sub.onCleared)
	}
}

func (s *Store) deliver(event string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("fault log subscriber panicked", "event", event, "panic", fmt.Sprint(v))
			s.observe(s.obs.SubscriberFault)
		}
	}()
	fn()
}
