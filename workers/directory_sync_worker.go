// workers/directory_sync_worker.go
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

	"edu-game-system/models"
	"edu-game-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// directoryPlayer matches the JSON shape of the directory service's changed
// profiles feed.
type directoryPlayer struct {
	ExternalID    string    `json:"external_id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	SchoolID      string    `json:"school_id"`
	AccountStatus string    `json:"account_status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type directorySchool struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DirectorySyncWorker keeps the local School/PlayerMirror tables in step
// with the external user directory. The leaderboard's school partitioning
// and display names come from these mirrors; the engine itself never calls
// the directory inline.
type DirectorySyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	serviceToken string
	httpClient   *http.Client

	lastSync time.Time
}

func NewDirectorySyncWorker(db *gorm.DB, directoryBaseURL, serviceToken string) *DirectorySyncWorker {
	return &DirectorySyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      directoryBaseURL,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
		// First pass mirrors everything
		lastSync: time.Time{},
	}
}

// Start runs the sync loop until the context is cancelled.
func (w *DirectorySyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Sync once at startup before the first tick
	w.syncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[DIRECTORY_SYNC] Worker stopped")
			return
		case <-ticker.C:
			w.syncOnce(ctx)
		}
	}
}

func (w *DirectorySyncWorker) syncOnce(ctx context.Context) {
	since := w.lastSync
	started := time.Now()

	schools, players, err := w.fetchChanges(ctx, since)
	if err != nil {
		log.Printf("❌ [DIRECTORY_SYNC] Fetch failed: %v", err)
		return
	}

	if err := w.upsert(schools, players); err != nil {
		log.Printf("❌ [DIRECTORY_SYNC] Upsert failed: %v", err)
		return
	}

	w.lastSync = started
	if len(schools) > 0 || len(players) > 0 {
		log.Printf("✅ [DIRECTORY_SYNC] Mirrored %d school(s), %d player(s)", len(schools), len(players))
	}
}

// fetchChanges pulls schools and players changed since the given time.
func (w *DirectorySyncWorker) fetchChanges(ctx context.Context, since time.Time) ([]directorySchool, []directoryPlayer, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/directory/changes", w.baseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call directory service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, nil, fmt.Errorf("directory service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Schools []directorySchool `json:"schools"`
		Players []directoryPlayer `json:"players"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, nil, fmt.Errorf("failed to decode directory response: %w", err)
	}
	return response.Schools, response.Players, nil
}

func (w *DirectorySyncWorker) upsert(schools []directorySchool, players []directoryPlayer) error {
	now := time.Now()
	return w.db.Transaction(func(tx *gorm.DB) error {
		for _, s := range schools {
			row := models.School{
				ID:       s.ID,
				Name:     s.Name,
				City:     s.City,
				Active:   s.Active,
				SyncedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "city", "active", "synced_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}

		for _, p := range players {
			row := models.PlayerMirror{
				ExternalUserID: p.ExternalID,
				Username:       p.Username,
				DisplayName:    p.DisplayName,
				AvatarURL:      p.AvatarURL,
				SchoolID:       p.SchoolID,
				AccountStatus:  p.AccountStatus,
				SyncedAt:       now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "avatar_url", "school_id", "account_status", "synced_at"}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
