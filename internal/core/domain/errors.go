package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrChannelNotFound = errors.New("channel not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidDuration = errors.New("duration must be a positive number")
	ErrInvalidUserID   = errors.New("invalid numeric user id")
	ErrInvalidVideoID  = errors.New("invalid numeric video id")
)
