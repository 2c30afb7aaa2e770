package playback

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("playback session not found")

// Manager tracks at most one live session per user. Starting a new session
// tears down the user's previous one, including its timers, before the new
// player instance exists — two progress samplers must never run for one view.
type Manager struct {
	cfg  Config
	sink ProgressSink

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byUser   map[uuid.UUID]*Session
}

func NewManager(sink ProgressSink, cfg Config) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		sink:     sink,
		sessions: make(map[uuid.UUID]*Session),
		byUser:   make(map[uuid.UUID]*Session),
	}
}

// Start creates a session for the lesson view, replacing any prior session
// owned by the same user.
func (m *Manager) Start(userID, lessonID uuid.UUID, videoID string, durationSeconds float64) *Session {
	m.mu.Lock()
	prev := m.byUser[userID]
	if prev != nil {
		delete(m.sessions, prev.ID)
	}
	s := newSession(userID, lessonID, videoID, durationSeconds, m.sink, m.cfg)
	m.sessions[s.ID] = s
	m.byUser[userID] = s
	m.mu.Unlock()

	// Old resources are released outside the lock; Close is idempotent.
	if prev != nil {
		prev.Close()
	}
	return s
}

// Get returns a session owned by the given user.
func (m *Manager) Get(sessionID, userID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close ends a session and forgets it.
func (m *Manager) Close(sessionID, userID uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if !ok || s.UserID != userID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	if m.byUser[userID] == s {
		delete(m.byUser, userID)
	}
	m.mu.Unlock()

	s.Close()
	return nil
}
