package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vidgate/internal/infrastructure/telegram"
)

// handleChannelPost ingests videos posted to channels the bot can see. The
// channel is registered on first sight; non-video posts are ignored.
func (r *Router) handleChannelPost(ctx context.Context, log *zap.SugaredLogger, post *telegram.Message) error {
	if post.Video == nil {
		return nil
	}

	video, err := r.videos.IngestChannelPost(ctx, post.Chat.ID, post.Chat.Title, post.Caption, post.Video.FileID)
	if err != nil {
		return fmt.Errorf("ingest channel post from %d: %w", post.Chat.ID, err)
	}
	r.metrics.IncVideoStored()
	log.Infow("channel video ingested", "channel_id", post.Chat.ID, "video_id", video.ID)

	if video.ShortURL == nil {
		return nil
	}
	return r.reply(ctx, post.Chat.ID, fmt.Sprintf(
		"Video Link: %s\n\n"+
			"Click this link to view the video in the bot.\n"+
			"Note: You need an active token to access the video.",
		*video.ShortURL))
}
