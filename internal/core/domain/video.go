package domain

import "time"

// Video is a gated video stored by the bot. FileID is the opaque Telegram
// media reference; ShortURL is nil until a link has been generated.
type Video struct {
	ID           int64
	Title        string
	FileID       string
	ShortURL     *string
	AddedBy      int64
	AddedOn      time.Time
	URLCreatedAt time.Time
}

func (v *Video) ShortURLString() string {
	if v.ShortURL == nil {
		return ""
	}
	return *v.ShortURL
}

// Channel is a Telegram channel registered for video ingestion.
type Channel struct {
	ID      int64
	Title   string
	AddedBy int64
	AddedOn time.Time
}
