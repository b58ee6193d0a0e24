// workers/history_archive_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"roster-rank-system/services"
	"roster-rank-system/utils"

	"github.com/google/uuid"
)

// HistoryArchiveWorker periodically exports newly appended rank history
// entries to the R2 audit bucket as JSON batches. The ledger in the database
// stays the source of truth; the bucket is cold storage.
type HistoryArchiveWorker struct {
	history  *services.HistoryService
	interval time.Duration
	cursor   time.Time
}

func NewHistoryArchiveWorker(history *services.HistoryService, interval time.Duration) *HistoryArchiveWorker {
	return &HistoryArchiveWorker{
		history:  history,
		interval: interval,
	}
}

func (w *HistoryArchiveWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting History Archive Worker (rank_history_entries → R2)…")
	go w.run(ctx)
}

func (w *HistoryArchiveWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.archiveBatch(ctx); err != nil {
				log.Printf("❌ History archive batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ History Archive Worker stopped")
			return
		}
	}
}

func (w *HistoryArchiveWorker) archiveBatch(ctx context.Context) error {
	entries, err := w.history.AppendedSince(w.cursor, 500)
	if err != nil {
		return fmt.Errorf("failed to read new history entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history batch: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("rank-history/%04d/%02d/%s.json", now.Year(), now.Month(), uuid.NewString())

	if err := utils.UploadJSONToR2(ctx, key, payload); err != nil {
		return err
	}

	// Advance only after a successful upload so a failed batch is retried.
	w.cursor = entries[len(entries)-1].CreatedAt

	log.Printf("[ARCHIVE] ✅ Exported %d history entries to %s", len(entries), key)
	return nil
}
