package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidgate/internal/core/domain"
)

type fakeVideoRepo struct {
	videos map[int64]*domain.Video
	nextID int64
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[int64]*domain.Video), nextID: 1}
}

func (r *fakeVideoRepo) Add(ctx context.Context, title, fileID string, addedBy int64) (*domain.Video, error) {
	video := &domain.Video{ID: r.nextID, Title: title, FileID: fileID, AddedBy: addedBy}
	r.videos[video.ID] = video
	r.nextID++
	return video, nil
}

func (r *fakeVideoRepo) SetShortURL(ctx context.Context, id int64, shortURL string) error {
	if video, ok := r.videos[id]; ok {
		video.ShortURL = &shortURL
	}
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	video, ok := r.videos[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	return video, nil
}

func (r *fakeVideoRepo) List(ctx context.Context) ([]*domain.Video, error) {
	videos := make([]*domain.Video, 0, len(r.videos))
	for _, video := range r.videos {
		videos = append(videos, video)
	}
	return videos, nil
}

func newTestGate(t *testing.T) (*fakeUserRepo, *fakeVideoRepo, *gateService) {
	t.Helper()
	users := newFakeUserRepo()
	videos := newFakeVideoRepo()
	entitlements := newTestEntitlementService(users, testNow)
	gate := NewGateService(users, videos, entitlements, zap.NewNop().Sugar()).(*gateService)
	return users, videos, gate
}

func TestGate_StopsAtMembershipFirst(t *testing.T) {
	_, _, gate := newTestGate(t)
	ctx := context.Background()

	// Unknown user: the membership stage halts before entitlement is
	// even consulted.
	result, err := gate.Authorize(ctx, 42, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GateMembershipRequired, result.Outcome)
	assert.Nil(t, result.Video)
}

func TestGate_StopsAtEntitlementAfterMembership(t *testing.T) {
	_, _, gate := newTestGate(t)
	ctx := context.Background()

	require.NoError(t, gate.ConfirmMembership(ctx, 42))

	result, err := gate.Authorize(ctx, 42, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GateEntitlementRequired, result.Outcome)
	assert.Equal(t, domain.NoAccess, result.Access)
}

func TestGate_VideoNotFoundIsDistinctFromDenial(t *testing.T) {
	users, _, gate := newTestGate(t)
	ctx := context.Background()

	require.NoError(t, gate.ConfirmMembership(ctx, 42))
	entitlements := newTestEntitlementService(users, testNow)
	_, err := entitlements.GrantToken(ctx, 42, DefaultTokenHours)
	require.NoError(t, err)

	result, err := gate.Authorize(ctx, 42, 999)
	require.NoError(t, err)
	assert.Equal(t, domain.GateVideoNotFound, result.Outcome)
	assert.Equal(t, domain.TokenValid, result.Access)
}

func TestGate_ReleasesVideo(t *testing.T) {
	users, videos, gate := newTestGate(t)
	ctx := context.Background()

	require.NoError(t, gate.ConfirmMembership(ctx, 42))
	entitlements := newTestEntitlementService(users, testNow)
	_, err := entitlements.GrantPremiumDays(ctx, 42, 30)
	require.NoError(t, err)

	stored, err := videos.Add(ctx, "Movie Night", "file-abc", 1)
	require.NoError(t, err)

	result, err := gate.Authorize(ctx, 42, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GateReleased, result.Outcome)
	assert.Equal(t, domain.Premium, result.Access)
	require.NotNil(t, result.Video)
	assert.Equal(t, "Movie Night", result.Video.Title)
	assert.Equal(t, "file-abc", result.Video.FileID)
}

func TestGate_ConfirmMembershipTrustsRetrySignal(t *testing.T) {
	_, _, gate := newTestGate(t)
	ctx := context.Background()

	joined, err := gate.CheckMembership(ctx, 42)
	require.NoError(t, err)
	assert.False(t, joined)

	// The retry press is recorded as proof, no transport check involved.
	require.NoError(t, gate.ConfirmMembership(ctx, 42))

	joined, err = gate.CheckMembership(ctx, 42)
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestGate_CheckAccessSkipsContentStage(t *testing.T) {
	users, _, gate := newTestGate(t)
	ctx := context.Background()

	require.NoError(t, gate.ConfirmMembership(ctx, 42))
	entitlements := newTestEntitlementService(users, testNow)
	_, err := entitlements.GrantToken(ctx, 42, DefaultTokenHours)
	require.NoError(t, err)

	result, err := gate.CheckAccess(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.GateReleased, result.Outcome)
	assert.Nil(t, result.Video)
}
