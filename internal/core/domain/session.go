package domain

// SessionState tracks where an admin is inside a multi-step command flow.
type SessionState string

const (
	// /add_video conversation
	AwaitingVideoTitle SessionState = "awaiting_video_title"
	AwaitingVideoFile  SessionState = "awaiting_video_file"

	// interactive /add_premium panel
	AwaitingPremiumUserID SessionState = "awaiting_premium_user_id"
	AwaitingPremiumMonths SessionState = "awaiting_premium_months"
	AwaitingPremiumDays   SessionState = "awaiting_premium_days"
	// target id captured, waiting for a duration button
	AwaitingPremiumChoice SessionState = "awaiting_premium_choice"
)

// Session is the pending conversation state for one admin. It is transient
// glue state, not part of the persistent documents.
type Session struct {
	UserID       int64        `json:"user_id"`
	State        SessionState `json:"state"`
	VideoTitle   string       `json:"video_title,omitempty"`
	TargetUserID int64        `json:"target_user_id,omitempty"`
	QuickOptions bool         `json:"quick_options,omitempty"`
}
