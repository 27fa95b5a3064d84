package jsonfile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelUpsert_RegistersAndUpdatesTitle(t *testing.T) {
	store := newTestStore(t)
	repo := NewChannelRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, -100123, "Movies", 111))
	require.NoError(t, repo.Upsert(ctx, -100456, "Series", 111))

	channels, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 2)

	// Re-adding an existing id updates the title, keeps the registrant.
	require.NoError(t, repo.Upsert(ctx, -100123, "Movies HD", 222))

	channels, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "Movies HD", channels[0].Title)
	assert.Equal(t, int64(111), channels[0].AddedBy)
}

func TestChannelList_EmptyDocument(t *testing.T) {
	store := newTestStore(t)
	repo := NewChannelRepository(store)

	channels, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, channels)
}
