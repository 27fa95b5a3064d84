package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

// sessionTTL bounds abandoned conversations; an admin who walks away
// mid-command starts over instead of resuming days later.
const sessionTTL = 24 * time.Hour

// SessionRepository keeps admin conversation state in Redis so it survives
// restarts and can be shared when several bot instances poll in turn.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) ports.SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("vidgate:session:%d", userID)
}

func (r *SessionRepository) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", userID, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", session.UserID, err)
	}
	if err := r.client.Set(ctx, sessionKey(session.UserID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session %d: %w", session.UserID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %d: %w", userID, err)
	}
	return nil
}
