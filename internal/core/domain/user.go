package domain

import "time"

// User is a bot user keyed by Telegram user id.
//
// Pointer fields mirror the persistence format of the historical documents:
// a nil Username or TokenExpiry is stored as an explicit null, while a nil
// JoinedChannels or IsPremium means the field was never written for this
// record. PremiumExpiry needs all three states (absent, null, value) because
// revocation writes an explicit null.
type User struct {
	ID             int64
	Username       *string
	TokenExpiry    *time.Time
	IsActive       bool
	JoinedChannels *bool
	IsPremium      *bool
	PremiumExpiry  NullableTime
}

// NullableTime distinguishes a field that was never written from one that
// holds an explicit null or a value.
type NullableTime struct {
	Present bool
	Time    *time.Time
}

func TimeValue(t time.Time) NullableTime {
	return NullableTime{Present: true, Time: &t}
}

func TimeNull() NullableTime {
	return NullableTime{Present: true}
}

// Valid reports whether the field is present and not null.
func (n NullableTime) Valid() bool {
	return n.Present && n.Time != nil
}

// HasJoinedChannels treats an absent joined_channels field as false.
func (u *User) HasJoinedChannels() bool {
	return u.JoinedChannels != nil && *u.JoinedChannels
}

// PremiumFlag treats an absent is_premium field as false.
func (u *User) PremiumFlag() bool {
	return u.IsPremium != nil && *u.IsPremium
}

func (u *User) DisplayName() string {
	if u.Username == nil {
		return "Unknown"
	}
	return *u.Username
}

// AccessClass is the derived entitlement state of a user.
type AccessClass int

const (
	NoAccess AccessClass = iota
	TokenValid
	Premium
)

func (a AccessClass) String() string {
	switch a {
	case TokenValid:
		return "token_valid"
	case Premium:
		return "premium"
	default:
		return "no_access"
	}
}

// PremiumUser is a row of the premium listing.
type PremiumUser struct {
	UserID   int64
	Username string
	Expiry   time.Time
}
