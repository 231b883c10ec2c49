package game

import (
	"log"
	"sync"
	"time"

	"shiritori/internal/utils"
)

// Manager owns the session table. Sessions are created on demand, looked up
// by the ID carried in the signed cookie, and reaped after sitting idle.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	saver       Saver
	idleTimeout time.Duration
}

func NewManager(saver Saver, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		saver:       saver,
		idleTimeout: idleTimeout,
	}
}

// Get returns the session for id, or nil if it does not exist (expired or
// never created).
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Create registers a fresh session under a new ID
func (m *Manager) Create() *Session {
	s := NewSession(utils.GenerateSessionID(), m.saver)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// GetOrCreate resolves id to a live session, minting a replacement when the
// ID is unknown. The returned bool reports whether a new session was made.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s := m.Get(id); s != nil {
			return s, false
		}
	}
	return m.Create(), true
}

// Count reports the number of live sessions, for the health endpoint
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartSweeper launches the idle-session reaper. It stops when done is
// closed.
func (m *Manager) StartSweeper(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-done:
				return
			}
		}
	}()
}

// sweep drops sessions idle past the timeout. An abandoned mid-round game
// still gets its score persisted through Quit before removal.
func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.LastAccess().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	// Quit outside the table lock; it takes each session's own lock and
	// may call the saver
	for _, s := range stale {
		s.Quit()
	}
	if len(stale) > 0 {
		log.Printf("Swept %d idle game session(s)", len(stale))
	}
}
