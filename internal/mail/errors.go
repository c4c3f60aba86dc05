package mail

import "errors"

var (
	ErrNoAccessToken = errors.New("mail access token not configured")
	ErrUpstream      = errors.New("mail request failed")
	ErrInvalidDraft  = errors.New("invalid draft")
	ErrInvalidEvent  = errors.New("invalid event")
)
