package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"

	"github.com/google/uuid"
)

var _ ports.SessionStore = (*Store)(nil)

// Store keeps wizard sessions in process memory. Drafts are transient by
// nature so this is also the production session backend.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entities.Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]entities.Session),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SetNow pins the store clock.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) CreateSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.SessionID]; exists {
		return domainerrors.ErrSessionConflict
	}
	s.sessions[session.SessionID] = cloneSession(session)
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string, now time.Time) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.Expired(now) {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Store) SaveSession(_ context.Context, session entities.Session, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.SessionID]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	if current.Version != expectedVersion {
		return domainerrors.ErrSessionConflict
	}
	s.sessions[session.SessionID] = cloneSession(session)
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, now time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := make([]entities.Session, 0)
	for _, session := range s.sessions {
		if session.Expired(now) {
			expired = append(expired, session)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	for _, session := range expired {
		delete(s.sessions, session.SessionID)
	}
	return len(expired), nil
}

// Count reports how many sessions are held, expired or not.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func cloneSession(session entities.Session) entities.Session {
	session.State = session.State.Clone()
	return session
}
