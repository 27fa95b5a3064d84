package ports

import (
	"context"
	"time"

	"vidgate/internal/core/domain"
)

// EntitlementService owns the token and premium lifecycle. Durations are
// whole hours or whole days; a "month" is a fixed 30-day multiplier, kept
// for compatibility with the historical documents.
type EntitlementService interface {
	// RegisterUser creates or refreshes the identity record for a user.
	RegisterUser(ctx context.Context, id int64, username string) error

	// GrantToken sets token_expiry to now+hours, creating the user if absent.
	GrantToken(ctx context.Context, id int64, hours int) (time.Time, error)
	CheckToken(ctx context.Context, id int64) (bool, error)
	TokenExpiry(ctx context.Context, id int64) (*time.Time, error)

	// GrantPremiumDays extends an unexpired premium grant from its current
	// expiry, or restarts from now when none is active. It also refreshes
	// the token expiry a year out so premium holders always pass the token
	// check. Returns the new premium expiry.
	GrantPremiumDays(ctx context.Context, id int64, days int) (time.Time, error)
	GrantPremiumMonths(ctx context.Context, id int64, months int) (time.Time, error)

	// RevokePremium clears the premium flag and expiry. Reports whether a
	// matching record existed; an unknown user is a no-op and false.
	RevokePremium(ctx context.Context, id int64) (bool, error)
	CheckPremium(ctx context.Context, id int64) (bool, error)
	PremiumExpiry(ctx context.Context, id int64) (*time.Time, error)

	// EffectiveState derives the access class, premium taking precedence.
	EffectiveState(ctx context.Context, id int64) (domain.AccessClass, error)
	ListPremium(ctx context.Context) ([]domain.PremiumUser, error)
}

// GateService runs the three-stage access gate: membership, entitlement,
// release. It keeps no state of its own.
type GateService interface {
	// Authorize runs the full gate for one video request.
	Authorize(ctx context.Context, userID, videoID int64) (*domain.GateResult, error)
	// CheckAccess runs the gate without a content stage (welcome flow).
	CheckAccess(ctx context.Context, userID int64) (*domain.GateResult, error)
	CheckMembership(ctx context.Context, userID int64) (bool, error)
	// ConfirmMembership records the user's retry signal as proof of
	// membership (trust-on-retry policy; membership is not independently
	// verified against the transport).
	ConfirmMembership(ctx context.Context, userID int64) error
}

// VideoService manages the video catalog and its access links.
type VideoService interface {
	// AddVideo stores a video and attaches its deep link.
	AddVideo(ctx context.Context, title, fileID string, addedBy int64) (*domain.Video, error)
	GetVideo(ctx context.Context, id int64) (*domain.Video, error)
	ListVideos(ctx context.Context) ([]*domain.Video, error)
	// IngestChannelPost registers the channel if unknown and stores a video
	// posted there, returning the stored video with its link.
	IngestChannelPost(ctx context.Context, channelID int64, channelTitle, caption, fileID string) (*domain.Video, error)
}

// ChannelService manages the registered channel list.
type ChannelService interface {
	Register(ctx context.Context, id int64, title string, addedBy int64) error
	List(ctx context.Context) ([]*domain.Channel, error)
}

// LinkProvider builds the outward-facing access links. TokenLink degrades
// to the direct deep link when the short-link provider fails; it never
// blocks a release on provider errors.
type LinkProvider interface {
	TokenLink(ctx context.Context, userID int64) string
	VideoLink(ctx context.Context, videoID int64) string
}
