package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

const untitledVideo = "Untitled Video"

type videoService struct {
	videos   ports.VideoRepository
	channels ports.ChannelRepository
	links    ports.LinkProvider
	logger   *zap.SugaredLogger
}

func NewVideoService(
	videos ports.VideoRepository,
	channels ports.ChannelRepository,
	links ports.LinkProvider,
	logger *zap.SugaredLogger,
) ports.VideoService {
	return &videoService{
		videos:   videos,
		channels: channels,
		links:    links,
		logger:   logger,
	}
}

func (s *videoService) AddVideo(ctx context.Context, title, fileID string, addedBy int64) (*domain.Video, error) {
	if title == "" {
		title = untitledVideo
	}

	video, err := s.videos.Add(ctx, title, fileID, addedBy)
	if err != nil {
		return nil, fmt.Errorf("add video: %w", err)
	}

	link := s.links.VideoLink(ctx, video.ID)
	if err := s.videos.SetShortURL(ctx, video.ID, link); err != nil {
		return nil, fmt.Errorf("attach link to video %d: %w", video.ID, err)
	}
	video.ShortURL = &link

	s.logger.Infow("video added",
		"video_id", video.ID,
		"title", title,
		"added_by", addedBy,
	)
	return video, nil
}

func (s *videoService) GetVideo(ctx context.Context, id int64) (*domain.Video, error) {
	return s.videos.GetByID(ctx, id)
}

func (s *videoService) ListVideos(ctx context.Context) ([]*domain.Video, error) {
	return s.videos.List(ctx)
}

func (s *videoService) IngestChannelPost(ctx context.Context, channelID int64, channelTitle, caption, fileID string) (*domain.Video, error) {
	known, err := s.channelKnown(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !known {
		s.logger.Infow("registering new channel from post",
			"channel_id", channelID,
			"title", channelTitle,
		)
		if err := s.channels.Upsert(ctx, channelID, channelTitle, 0); err != nil {
			return nil, fmt.Errorf("register channel %d: %w", channelID, err)
		}
	}

	return s.AddVideo(ctx, caption, fileID, 0)
}

func (s *videoService) channelKnown(ctx context.Context, channelID int64) (bool, error) {
	channels, err := s.channels.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list channels: %w", err)
	}
	for _, channel := range channels {
		if channel.ID == channelID {
			return true, nil
		}
	}
	return false, nil
}
