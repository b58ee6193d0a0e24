// workers/roster_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"roster-rank-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileUser matches the JSON payload of the profile service's change feed.
type ProfileUser struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetUserChangesResponse is the top-level structure of the change feed response.
type GetUserChangesResponse struct {
	Users []ProfileUser `json:"users"`
}

// RosterSyncWorker mirrors the profile service's users into the local
// roster_users table so the rank subsystem can answer Exists/Lookup without a
// network hop per request.
type RosterSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewRosterSyncWorker(db *gorm.DB, profileServiceBaseURL, endpointPath, serviceToken string) *RosterSyncWorker {
	return &RosterSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      profileServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *RosterSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Roster Sync Worker (profile service → roster_users)…")
	go w.run(ctx)
}

func (w *RosterSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial roster sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSyncTime()); err != nil {
				log.Printf("❌ Roster sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Roster Sync Worker stopped")
			return
		}
	}
}

// lastSyncTime finds the most recent UpdatedAt in the local mirror; the next
// incremental fetch starts there.
func (w *RosterSyncWorker) lastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM roster_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *RosterSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}

	if len(response.Users) == 0 {
		return nil
	}

	var upsertCount, errorCount int
	for _, remote := range response.Users {
		local := models.RosterUser{
			ExternalUserID: remote.ExternalID,
			Username:       remote.Username,
			Email:          remote.Email,
			CreatedAt:      remote.CreatedAt,
			UpdatedAt:      remote.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "email", "updated_at"}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[ROSTER_SYNC] ⚠️ Failed to upsert roster_user (external_id=%q): %v",
				remote.ExternalID, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[ROSTER_SYNC] ✅ Synced %d user(s) since %s (%d upserted, %d errors)",
		len(response.Users), sinceStr, upsertCount, errorCount)
	return nil
}
