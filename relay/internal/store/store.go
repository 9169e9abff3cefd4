package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Room is the metadata the relay keeps for one watch party.
type Room struct {
	ID    string
	Owner string
	Title string

	// WebhookURL is the chat mirror endpoint handed to clients.
	WebhookURL string

	// StreamURL is the live-stream source handed to clients.
	StreamURL string
}

// entry is a room together with member-reported playback positions and the
// time of its last activity.
type entry struct {
	room      Room
	positions map[string]int
	updatedAt time.Time
}

// Store is a thread-safe room registry, keyed by room ID. A background
// goroutine (Run) periodically evicts rooms that have seen no activity
// within the configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*entry
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put creates or replaces the room, resetting its activity clock. Reported
// positions survive a metadata update.
func (s *Store) Put(room Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[room.ID]
	if !ok {
		e = &entry{positions: make(map[string]int)}
		s.data[room.ID] = e
	}
	e.room = room
	e.updatedAt = s.now()
}

// Get returns the room for id and whether it exists.
func (s *Store) Get(id string) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return Room{}, false
	}
	return e.room, true
}

// Touch marks the room as active, deferring eviction. Unknown ids are a
// no-op.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[id]; ok {
		e.updatedAt = s.now()
	}
}

// SetPosition records member's reported playback position for the room and
// counts as activity. It reports whether the room exists.
func (s *Store) SetPosition(id, member string, position int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	if !ok {
		return false
	}
	e.positions[member] = position
	e.updatedAt = s.now()
	return true
}

// Positions returns a copy of the room's member positions.
func (s *Store) Positions(id string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(e.positions))
	for k, v := range e.positions {
		out[k] = v
	}
	return out
}

// List returns all rooms whose last activity is within the TTL.
func (s *Store) List() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]Room, 0, len(s.data))
	for _, e := range s.data {
		if e.updatedAt.After(cutoff) {
			out = append(out, e.room)
		}
	}
	return out
}

// Count returns the total number of rooms currently held, including stale
// ones not yet evicted.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Evict removes rooms whose last activity is older than now minus TTL.
// It returns the number of rooms removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, e := range s.data {
		if !e.updatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second) so idle rooms go away promptly. Run blocks
// until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted idle rooms", "count", n)
			}
		}
	}
}
