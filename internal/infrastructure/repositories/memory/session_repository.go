package memory

import (
	"context"
	"sync"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

// SessionRepository keeps admin conversation state in process memory. State
// is glue for multi-step commands only, so losing it on restart is fine.
type SessionRepository struct {
	sessions map[int64]*domain.Session
	mu       sync.RWMutex
}

func NewSessionRepository() ports.SessionRepository {
	return &SessionRepository{
		sessions: make(map[int64]*domain.Session),
	}
}

func (r *SessionRepository) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[userID]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.UserID] = &copied
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
	return nil
}
