package database

import (
	"time"
)

type MediaURLRepository interface {
	// Set stores or replaces the resolved media URL for one piece of content.
	Set(service, username, contentID, mediaURL string, expiresAt time.Time) error

	// Get returns the stored media URL, or the empty string when no live
	// entry exists for the key.
	Get(service, username, contentID string) (string, error)

	// DeleteExpired drops entries whose expiry has passed, returning the
	// number of rows removed.
	DeleteExpired() (int64, error)
}
