package database

import (
	"time"
)

// MediaURL is a resolved direct media URL stored for one piece of upstream
// content. Entries are best-effort: they expire and may be overwritten by a
// later extraction of the same content.
type MediaURL struct {
	Service   string
	Username  string
	ContentID string
	MediaURL  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
