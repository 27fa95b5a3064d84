package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidgate/internal/core/domain"
)

type fakeChannelRepo struct {
	channels map[int64]*domain.Channel
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: make(map[int64]*domain.Channel)}
}

func (r *fakeChannelRepo) Upsert(ctx context.Context, id int64, title string, addedBy int64) error {
	if existing, ok := r.channels[id]; ok {
		existing.Title = title
		return nil
	}
	r.channels[id] = &domain.Channel{ID: id, Title: title, AddedBy: addedBy}
	return nil
}

func (r *fakeChannelRepo) List(ctx context.Context) ([]*domain.Channel, error) {
	channels := make([]*domain.Channel, 0, len(r.channels))
	for _, channel := range r.channels {
		channels = append(channels, channel)
	}
	return channels, nil
}

type fakeLinkProvider struct{}

func (fakeLinkProvider) TokenLink(ctx context.Context, userID int64) string {
	return fmt.Sprintf("https://short.example/token_%d", userID)
}

func (fakeLinkProvider) VideoLink(ctx context.Context, videoID int64) string {
	return fmt.Sprintf("https://t.me/testbot?start=video_%d", videoID)
}

func newTestVideoService(videos *fakeVideoRepo, channels *fakeChannelRepo) *videoService {
	return NewVideoService(videos, channels, fakeLinkProvider{}, zap.NewNop().Sugar()).(*videoService)
}

func TestAddVideo_AttachesDeepLink(t *testing.T) {
	svc := newTestVideoService(newFakeVideoRepo(), newFakeChannelRepo())

	video, err := svc.AddVideo(context.Background(), "Trailer", "file-1", 111)
	require.NoError(t, err)
	require.NotNil(t, video.ShortURL)
	assert.Equal(t, "https://t.me/testbot?start=video_1", *video.ShortURL)
}

func TestAddVideo_EmptyTitleGetsDefault(t *testing.T) {
	svc := newTestVideoService(newFakeVideoRepo(), newFakeChannelRepo())

	video, err := svc.AddVideo(context.Background(), "", "file-1", 111)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Video", video.Title)
}

func TestIngestChannelPost_RegistersUnknownChannel(t *testing.T) {
	channels := newFakeChannelRepo()
	svc := newTestVideoService(newFakeVideoRepo(), channels)
	ctx := context.Background()

	video, err := svc.IngestChannelPost(ctx, -100123, "Movies", "New Release", "file-post")
	require.NoError(t, err)
	assert.Equal(t, "New Release", video.Title)
	require.NotNil(t, video.ShortURL)

	registered, err := channels.List(ctx)
	require.NoError(t, err)
	require.Len(t, registered, 1)
	assert.Equal(t, "Movies", registered[0].Title)

	// A second post from the same channel does not re-register it.
	_, err = svc.IngestChannelPost(ctx, -100123, "Movies", "Another", "file-2")
	require.NoError(t, err)
	registered, err = channels.List(ctx)
	require.NoError(t, err)
	assert.Len(t, registered, 1)
}
