package tracker

import "errors"

var (
	// ErrUpstream covers transport failures and non-success responses.
	ErrUpstream = errors.New("tracker request failed")

	// ErrNotFound is returned when a work item or project does not exist.
	ErrNotFound = errors.New("tracker resource not found")

	// ErrNotConfigured is returned when organization or project is missing.
	ErrNotConfigured = errors.New("tracker organization or project not configured")
)
