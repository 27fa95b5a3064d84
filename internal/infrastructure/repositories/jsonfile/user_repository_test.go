package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidgate/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store := NewStore(
		filepath.Join(dir, "user_data.json"),
		filepath.Join(dir, "videos.json"),
		filepath.Join(dir, "channels.json"),
		zap.NewNop().Sugar(),
	)
	require.NoError(t, store.Init())
	return store
}

func TestUserUpsert_CreatesDefaultRecord(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	var sawCreated bool
	user, err := repo.Upsert(ctx, 42, func(u *domain.User, created bool) {
		sawCreated = created
	})
	require.NoError(t, err)
	assert.True(t, sawCreated)
	assert.Equal(t, int64(42), user.ID)
	assert.Nil(t, user.Username)
	assert.Nil(t, user.TokenExpiry)
	assert.False(t, user.IsActive)
	assert.Nil(t, user.JoinedChannels)
	assert.Nil(t, user.IsPremium)
	assert.False(t, user.PremiumExpiry.Present)

	again, err := repo.Upsert(ctx, 42, func(u *domain.User, created bool) {
		assert.False(t, created)
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestUserUpdate_UnknownUser(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)

	_, err := repo.Update(context.Background(), 99, func(u *domain.User) {})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserDocument_AbsentAndNullFieldsSurviveRewrite(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	// A record written before the membership and premium fields existed,
	// and one where premium was revoked (explicit null).
	raw := `{
  "users": [
    {"user_id": 1, "username": "alice", "token_expiry": null, "is_active": true},
    {"user_id": 2, "username": null, "token_expiry": "2025-01-02T10:30:00", "is_active": true, "joined_channels": true, "is_premium": false, "premium_expiry": null}
  ]
}`
	require.NoError(t, os.WriteFile(store.usersPath, []byte(raw), 0o644))

	// Touch the first record so the document gets rewritten.
	expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	_, err := repo.Update(ctx, 1, func(u *domain.User) {
		u.TokenExpiry = &expiry
	})
	require.NoError(t, err)

	data, err := os.ReadFile(store.usersPath)
	require.NoError(t, err)

	var doc struct {
		Users []map[string]json.RawMessage `json:"users"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Users, 2)

	first := doc.Users[0]
	assert.NotContains(t, first, "joined_channels")
	assert.NotContains(t, first, "is_premium")
	assert.NotContains(t, first, "premium_expiry")
	assert.JSONEq(t, `"2025-06-01T12:00:00"`, string(first["token_expiry"]))

	second := doc.Users[1]
	assert.JSONEq(t, `null`, string(second["username"]))
	assert.JSONEq(t, `null`, string(second["premium_expiry"]))
	assert.JSONEq(t, `false`, string(second["is_premium"]))

	user, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.True(t, user.PremiumExpiry.Present)
	assert.Nil(t, user.PremiumExpiry.Time)
	require.NotNil(t, user.JoinedChannels)
	assert.True(t, *user.JoinedChannels)
}

func TestUserDocument_UnknownKeysPreserved(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)

	raw := `{
  "users": [
    {"user_id": 7, "username": "bob", "token_expiry": null, "is_active": false, "legacy_note": {"migrated": true}}
  ]
}`
	require.NoError(t, os.WriteFile(store.usersPath, []byte(raw), 0o644))

	_, err := repo.Update(context.Background(), 7, func(u *domain.User) {
		u.IsActive = true
	})
	require.NoError(t, err)

	data, err := os.ReadFile(store.usersPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"legacy_note"`)
	assert.Contains(t, string(data), `"migrated"`)
}

func TestUserDocument_CorruptFileTreatedAsEmpty(t *testing.T) {
	store := newTestStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(store.usersPath, []byte("{not json"), 0o644))

	_, err := repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// A write through the repository recovers the document.
	_, err = repo.Upsert(ctx, 1, func(u *domain.User, created bool) {
		u.IsActive = true
	})
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
