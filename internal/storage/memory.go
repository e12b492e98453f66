package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/wandhekar/smart-chat-app/internal/model"
)

type MemoryStorage struct {
	sessions map[string]*model.Session
	mu       sync.RWMutex
	now      func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*model.Session)
	return nil
}

func (m *MemoryStorage) CreateSession(session *model.Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return ErrSessionExists
	}

	s := session.Clone()
	now := m.now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStorage) GetSession(sessionID string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session.Clone(), nil
}

// ListSessions returns copies ordered by creation time.
func (m *MemoryStorage) ListSessions() ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session.Clone())
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// DeleteExpired drops every session last touched before cutoff and returns
// their IDs.
func (m *MemoryStorage) DeleteExpired(cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, session := range m.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

func (m *MemoryStorage) AppendTurn(sessionID string, turn model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Turns = append(session.Turns, turn)
	session.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStorage) ClearTurns(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Turns = nil
	session.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStorage) AddFlash(sessionID string, flash model.Flash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Flashes = append(session.Flashes, flash)
	return nil
}

// TakeFlashes returns pending flashes and forgets them.
func (m *MemoryStorage) TakeFlashes(sessionID string) ([]model.Flash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	flashes := session.Flashes
	session.Flashes = nil
	session.UpdatedAt = m.now()
	return flashes, nil
}
