// internal/store/memory.go
//
// In-memory session store.
// Characteristics:
//   - Sessions keyed by ID in a map, guarded by an RWMutex.
//   - Sessions idle longer than the TTL are dropped by Sweep.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordtiles/apps/go-server/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store persists game sessions.
type Store interface {
	Save(ctx context.Context, s *game.Session) error
	Get(ctx context.Context, id string) (*game.Session, error)
	Delete(ctx context.Context, id string) error
	Len() int
}

type entry struct {
	s    *game.Session
	seen time.Time
}

// Memory is a map-backed Store with idle expiry.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemory builds a Memory store. ttl <= 0 disables expiry.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{sessions: make(map[string]*entry), ttl: ttl, now: time.Now}
}

// Save adds or replaces the session and marks it as seen.
func (m *Memory) Save(_ context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &entry{s: s, seen: m.now()}
	return nil
}

// Get looks up a session and refreshes its idle timer.
func (m *Memory) Get(_ context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(e) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	e.seen = m.now()
	return e.s, nil
}

// Delete removes a session. Unknown IDs are ignored.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len is the number of stored sessions, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Memory) expired(e *entry) bool {
	return m.ttl > 0 && m.now().Sub(e.seen) > m.ttl
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Info().Int("expired", n).Int("remaining", m.Len()).Msg("sessions swept")
			}
		}
	}
}
