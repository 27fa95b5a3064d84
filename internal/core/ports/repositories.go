package ports

import (
	"context"

	"vidgate/internal/core/domain"
)

// UserRepository persists user records in the users document.
//
// Upsert and Update run their mutate callback inside the document's
// exclusive section, so a read-modify-write cannot lose a concurrent
// update. Upsert creates a default record (null username, null token
// expiry, inactive) before applying mutate, and tells the callback whether
// it did; Update returns domain.ErrUserNotFound instead.
type UserRepository interface {
	Upsert(ctx context.Context, id int64, mutate func(user *domain.User, created bool)) (*domain.User, error)
	Update(ctx context.Context, id int64, mutate func(*domain.User)) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// VideoRepository persists video records. Add assigns the next document id
// atomically with respect to other writers; ids are never reused.
type VideoRepository interface {
	Add(ctx context.Context, title, fileID string, addedBy int64) (*domain.Video, error)
	SetShortURL(ctx context.Context, id int64, shortURL string) error
	GetByID(ctx context.Context, id int64) (*domain.Video, error)
	// List returns all videos, newest first.
	List(ctx context.Context) ([]*domain.Video, error)
}

// ChannelRepository persists registered channels. Upsert of an existing
// channel id updates its title in place.
type ChannelRepository interface {
	Upsert(ctx context.Context, id int64, title string, addedBy int64) error
	List(ctx context.Context) ([]*domain.Channel, error)
}

// SessionRepository holds transient admin conversation state.
type SessionRepository interface {
	Get(ctx context.Context, userID int64) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, userID int64) error
}
