package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Snazzah/VideoEmbedFix/app/database"
)

// CleanupMediaURLsTask drops expired rows from the media URL store. Entries
// only stop being served once they expire, so this is purely about keeping
// the table small.
type CleanupMediaURLsTask struct {
	Task
	store database.MediaURLRepository
}

func NewCleanupMediaURLsTask(store database.MediaURLRepository) *CleanupMediaURLsTask {
	return &CleanupMediaURLsTask{
		Task:  NewTask(TaskTypeCleanupMediaURLs),
		store: store,
	}
}

func (t *CleanupMediaURLsTask) Execute(ctx context.Context) error {
	count, err := t.store.DeleteExpired()
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if count > 0 {
		slog.Debug("Pruned expired media URLs", "count", count, "duration", t.GetDuration().String())
	}

	return nil
}
