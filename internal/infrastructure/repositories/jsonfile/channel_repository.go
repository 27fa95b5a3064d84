package jsonfile

import (
	"context"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

type channelsDocument struct {
	Channels []*channelRecord `json:"channels"`
}

type channelRecord struct {
	ID      int64      `json:"channel_id"`
	Title   string     `json:"title"`
	AddedBy int64      `json:"added_by"`
	AddedOn *Timestamp `json:"added_on,omitempty"`
}

func (r *channelRecord) toDomain() *domain.Channel {
	ch := &domain.Channel{
		ID:      r.ID,
		Title:   r.Title,
		AddedBy: r.AddedBy,
	}
	if r.AddedOn != nil {
		ch.AddedOn = r.AddedOn.Time
	}
	return ch
}

// ChannelRepository persists registered channels.
type ChannelRepository struct {
	store *Store
}

func NewChannelRepository(store *Store) ports.ChannelRepository {
	return &ChannelRepository{store: store}
}

func (r *ChannelRepository) readChannels() channelsDocument {
	doc := channelsDocument{Channels: []*channelRecord{}}
	if !r.store.readDocument(r.store.channelsPath, &doc) {
		return channelsDocument{Channels: []*channelRecord{}}
	}
	if doc.Channels == nil {
		doc.Channels = []*channelRecord{}
	}
	return doc
}

// Upsert registers a channel; re-adding an existing id updates its title in
// place and keeps the original registrant and timestamp.
func (r *ChannelRepository) Upsert(ctx context.Context, id int64, title string, addedBy int64) error {
	r.store.channelsMu.Lock()
	defer r.store.channelsMu.Unlock()

	doc := r.readChannels()
	for _, rec := range doc.Channels {
		if rec.ID == id {
			rec.Title = title
			return r.store.writeDocument(r.store.channelsPath, doc)
		}
	}
	doc.Channels = append(doc.Channels, &channelRecord{
		ID:      id,
		Title:   title,
		AddedBy: addedBy,
		AddedOn: newTimestamp(r.store.now()),
	})
	return r.store.writeDocument(r.store.channelsPath, doc)
}

func (r *ChannelRepository) List(ctx context.Context) ([]*domain.Channel, error) {
	r.store.channelsMu.Lock()
	defer r.store.channelsMu.Unlock()

	doc := r.readChannels()
	channels := make([]*domain.Channel, 0, len(doc.Channels))
	for _, rec := range doc.Channels {
		channels = append(channels, rec.toDomain())
	}
	return channels, nil
}
