package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidgate/internal/core/domain"
)

// fakeUserRepo mimics the document repository's read-modify-write contract
// in memory.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	copied := *u
	if u.Username != nil {
		name := *u.Username
		copied.Username = &name
	}
	if u.TokenExpiry != nil {
		t := *u.TokenExpiry
		copied.TokenExpiry = &t
	}
	if u.JoinedChannels != nil {
		b := *u.JoinedChannels
		copied.JoinedChannels = &b
	}
	if u.IsPremium != nil {
		b := *u.IsPremium
		copied.IsPremium = &b
	}
	if u.PremiumExpiry.Time != nil {
		t := *u.PremiumExpiry.Time
		copied.PremiumExpiry.Time = &t
	}
	return &copied
}

func (r *fakeUserRepo) Upsert(ctx context.Context, id int64, mutate func(user *domain.User, created bool)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		user = &domain.User{ID: id}
	}
	copied := cloneUser(user)
	mutate(copied, !exists)
	r.users[id] = cloneUser(copied)
	return copied, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, mutate func(*domain.User)) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	copied := cloneUser(user)
	mutate(copied)
	r.users[id] = cloneUser(copied)
	return copied, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, cloneUser(user))
	}
	return users, nil
}

func newTestEntitlementService(repo *fakeUserRepo, now time.Time) *entitlementService {
	svc := NewEntitlementService(repo, zap.NewNop().Sugar()).(*entitlementService)
	svc.now = func() time.Time { return now }
	return svc
}

var testNow = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func TestGrantToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	expiry, err := svc.GrantToken(ctx, 42, DefaultTokenHours)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(24*time.Hour), expiry)

	valid, err := svc.CheckToken(ctx, 42)
	require.NoError(t, err)
	assert.True(t, valid)

	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
}

func TestGrantToken_RejectsNonPositiveHours(t *testing.T) {
	svc := newTestEntitlementService(newFakeUserRepo(), testNow)

	_, err := svc.GrantToken(context.Background(), 42, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	_, err = svc.GrantToken(context.Background(), 42, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestCheckToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	t.Run("unknown user has no token", func(t *testing.T) {
		valid, err := svc.CheckToken(ctx, 1)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("expired token", func(t *testing.T) {
		past := testNow.Add(-time.Minute)
		_, err := repo.Upsert(ctx, 2, func(u *domain.User, created bool) {
			u.TokenExpiry = &past
		})
		require.NoError(t, err)

		valid, err := svc.CheckToken(ctx, 2)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestGrantPremiumDays_ExtendsUnexpiredGrant(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	first, err := svc.GrantPremiumDays(ctx, 42, 30)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(30*24*time.Hour), first)

	// A second grant before expiry stacks on top of the remaining time.
	second, err := svc.GrantPremiumDays(ctx, 42, 10)
	require.NoError(t, err)
	assert.Equal(t, first.Add(10*24*time.Hour), second)

	// Premium also pushes the token expiry a year out.
	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user.TokenExpiry)
	assert.Equal(t, testNow.Add(365*24*time.Hour), *user.TokenExpiry)
}

func TestGrantPremiumDays_RestartsAfterExpiry(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	expired := testNow.Add(-48 * time.Hour)
	premium := true
	_, err := repo.Upsert(ctx, 42, func(u *domain.User, created bool) {
		u.IsPremium = &premium
		u.PremiumExpiry = domain.TimeValue(expired)
	})
	require.NoError(t, err)

	expiry, err := svc.GrantPremiumDays(ctx, 42, 5)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(5*24*time.Hour), expiry)
}

func TestGrantPremiumMonths_UsesFixedMultiplier(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)

	expiry, err := svc.GrantPremiumMonths(context.Background(), 42, 2)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(60*24*time.Hour), expiry)
}

func TestRevokePremium(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	t.Run("unknown user is a no-op", func(t *testing.T) {
		removed, err := svc.RevokePremium(ctx, 404)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("existing grant is cleared", func(t *testing.T) {
		_, err := svc.GrantPremiumDays(ctx, 42, 30)
		require.NoError(t, err)

		removed, err := svc.RevokePremium(ctx, 42)
		require.NoError(t, err)
		assert.True(t, removed)

		active, err := svc.CheckPremium(ctx, 42)
		require.NoError(t, err)
		assert.False(t, active)

		// Revocation writes an explicit null, not an absent field.
		user, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.True(t, user.PremiumExpiry.Present)
		assert.Nil(t, user.PremiumExpiry.Time)
	})
}

func TestEffectiveState(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		state, err := svc.EffectiveState(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.NoAccess, state)
	})

	t.Run("token only", func(t *testing.T) {
		_, err := svc.GrantToken(ctx, 2, DefaultTokenHours)
		require.NoError(t, err)

		state, err := svc.EffectiveState(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, domain.TokenValid, state)
	})

	t.Run("premium wins over token", func(t *testing.T) {
		_, err := svc.GrantToken(ctx, 3, DefaultTokenHours)
		require.NoError(t, err)
		_, err = svc.GrantPremiumDays(ctx, 3, 30)
		require.NoError(t, err)

		state, err := svc.EffectiveState(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, domain.Premium, state)
	})

	t.Run("expired premium falls back to token check", func(t *testing.T) {
		premium := true
		expired := testNow.Add(-time.Hour)
		_, err := repo.Upsert(ctx, 4, func(u *domain.User, created bool) {
			u.IsPremium = &premium
			u.PremiumExpiry = domain.TimeValue(expired)
		})
		require.NoError(t, err)

		state, err := svc.EffectiveState(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, domain.NoAccess, state)
	})
}

func TestListPremium_SkipsExpiredGrants(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	require.NoError(t, svc.RegisterUser(ctx, 1, "alice"))
	_, err := svc.GrantPremiumDays(ctx, 1, 30)
	require.NoError(t, err)

	premium := true
	expired := testNow.Add(-time.Hour)
	_, err = repo.Upsert(ctx, 2, func(u *domain.User, created bool) {
		u.IsPremium = &premium
		u.PremiumExpiry = domain.TimeValue(expired)
	})
	require.NoError(t, err)

	rows, err := svc.ListPremium(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].UserID)
	assert.Equal(t, "alice", rows[0].Username)
}

func TestRegisterUser_EmptyUsernameStoredAsNull(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestEntitlementService(repo, testNow)
	ctx := context.Background()

	require.NoError(t, svc.RegisterUser(ctx, 42, ""))

	user, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user.Username)
	assert.Equal(t, "Unknown", user.DisplayName())
}
