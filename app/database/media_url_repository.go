package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLMediaURLRepository handles database operations for resolved media URLs
type SQLMediaURLRepository struct {
	db *DB
}

// NewMediaURLRepository creates a new media URL repository
func NewMediaURLRepository(db *DB) *SQLMediaURLRepository {
	return &SQLMediaURLRepository{db: db}
}

func (r *SQLMediaURLRepository) Set(service, username, contentID, mediaURL string, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO media_urls (service, username, content_id, media_url, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (service, username, content_id)
		DO UPDATE SET media_url = excluded.media_url, expires_at = excluded.expires_at
	`, service, username, contentID, mediaURL, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to store media URL: %w", err)
	}

	return nil
}

// DeleteExpired removes every entry whose expiry has passed and returns the
// number of rows dropped.
func (r *SQLMediaURLRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM media_urls WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune expired media URLs: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned media URLs: %w", err)
	}

	return count, nil
}

func (r *SQLMediaURLRepository) Get(service, username, contentID string) (string, error) {
	var mediaURL string
	err := r.db.QueryRow(`
		SELECT media_url FROM media_urls
		WHERE service = ? AND username = ? AND content_id = ? AND expires_at >= ?
	`, service, username, contentID, time.Now().UTC()).Scan(&mediaURL)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get media URL: %w", err)
	}

	return mediaURL, nil
}
