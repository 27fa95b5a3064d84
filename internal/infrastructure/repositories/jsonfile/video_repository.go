package jsonfile

import (
	"context"
	"sort"

	"vidgate/internal/core/domain"
	"vidgate/internal/core/ports"
)

type videosDocument struct {
	Videos []*videoRecord `json:"videos"`
	NextID int64          `json:"next_id"`
}

type videoRecord struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	FileID       string     `json:"file_id"`
	ShortURL     *string    `json:"short_url"`
	AddedBy      int64      `json:"added_by"`
	AddedOn      *Timestamp `json:"added_on,omitempty"`
	URLCreatedAt *Timestamp `json:"url_created_at,omitempty"`
}

func (r *videoRecord) toDomain() *domain.Video {
	v := &domain.Video{
		ID:      r.ID,
		Title:   r.Title,
		FileID:  r.FileID,
		AddedBy: r.AddedBy,
	}
	if r.ShortURL != nil {
		url := *r.ShortURL
		v.ShortURL = &url
	}
	if r.AddedOn != nil {
		v.AddedOn = r.AddedOn.Time
	}
	if r.URLCreatedAt != nil {
		v.URLCreatedAt = r.URLCreatedAt.Time
	}
	return v
}

// VideoRepository persists videos in the videos document. Ids come from the
// document's next_id counter, claimed under the document lock, so they are
// strictly increasing and never reused.
type VideoRepository struct {
	store *Store
}

func NewVideoRepository(store *Store) ports.VideoRepository {
	return &VideoRepository{store: store}
}

func (r *VideoRepository) readVideos() videosDocument {
	doc := videosDocument{Videos: []*videoRecord{}, NextID: 1}
	if !r.store.readDocument(r.store.videosPath, &doc) {
		return videosDocument{Videos: []*videoRecord{}, NextID: 1}
	}
	if doc.Videos == nil {
		doc.Videos = []*videoRecord{}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc
}

func (r *VideoRepository) Add(ctx context.Context, title, fileID string, addedBy int64) (*domain.Video, error) {
	r.store.videosMu.Lock()
	defer r.store.videosMu.Unlock()

	doc := r.readVideos()
	now := r.store.now()
	rec := &videoRecord{
		ID:           doc.NextID,
		Title:        title,
		FileID:       fileID,
		ShortURL:     nil,
		AddedBy:      addedBy,
		AddedOn:      newTimestamp(now),
		URLCreatedAt: newTimestamp(now),
	}
	doc.Videos = append(doc.Videos, rec)
	doc.NextID = rec.ID + 1

	if err := r.store.writeDocument(r.store.videosPath, doc); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (r *VideoRepository) SetShortURL(ctx context.Context, id int64, shortURL string) error {
	r.store.videosMu.Lock()
	defer r.store.videosMu.Unlock()

	doc := r.readVideos()
	for _, rec := range doc.Videos {
		if rec.ID == id {
			url := shortURL
			rec.ShortURL = &url
			rec.URLCreatedAt = newTimestamp(r.store.now())
			break
		}
	}
	return r.store.writeDocument(r.store.videosPath, doc)
}

func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	r.store.videosMu.Lock()
	defer r.store.videosMu.Unlock()

	for _, rec := range r.readVideos().Videos {
		if rec.ID == id {
			return rec.toDomain(), nil
		}
	}
	return nil, domain.ErrVideoNotFound
}

func (r *VideoRepository) List(ctx context.Context) ([]*domain.Video, error) {
	r.store.videosMu.Lock()
	defer r.store.videosMu.Unlock()

	doc := r.readVideos()
	videos := make([]*domain.Video, 0, len(doc.Videos))
	for _, rec := range doc.Videos {
		videos = append(videos, rec.toDomain())
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].AddedOn.After(videos[j].AddedOn)
	})
	return videos, nil
}
