package services

import (
	"context"
	"fmt"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

type channelService struct {
	channels ports.ChannelRepository
}

func NewChannelService(channels ports.ChannelRepository) ports.ChannelService {
	return &channelService{channels: channels}
}

func (s *channelService) Register(ctx context.Context, id int64, title string, addedBy int64) error {
	if title == "" {
		title = fmt.Sprintf("Channel %d", id)
	}
	if err := s.channels.Upsert(ctx, id, title, addedBy); err != nil {
		return fmt.Errorf("register channel %d: %w", id, err)
	}
	return nil
}

func (s *channelService) List(ctx context.Context) ([]*domain.Channel, error) {
	return s.channels.List(ctx)
}
