// workers/activity_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"edu-game-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRecomputer refreshes per-school daily active player counts.
// "Active" means the player has a progress row for the day, i.e. they
// touched at least one game.
type ActivityRecomputer struct {
	DB *gorm.DB
}

func NewActivityRecomputer(db *gorm.DB) *ActivityRecomputer {
	return &ActivityRecomputer{DB: db}
}

// PollActivity recomputes on a fixed interval until the context is
// cancelled.
func PollActivity(ctx context.Context, r *ActivityRecomputer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[ACTIVITY] Worker stopped")
			return
		case <-ticker.C:
			if err := r.RecomputeToday(); err != nil {
				log.Printf("❌ [ACTIVITY] Recompute failed: %v", err)
			}
		}
	}
}

// RecomputeToday counts today's distinct active players per school and
// upserts one DailyActivity row per school.
func (r *ActivityRecomputer) RecomputeToday() error {
	day := time.Now().Format("2006-01-02")

	type schoolCount struct {
		SchoolID string
		Players  int64
	}
	var counts []schoolCount
	err := r.DB.Model(&models.LevelProgress{}).
		Select("player_mirrors.school_id AS school_id, COUNT(DISTINCT level_progresses.external_user_id) AS players").
		Joins("JOIN player_mirrors ON player_mirrors.external_user_id = level_progresses.external_user_id").
		Where("level_progresses.day = ? AND player_mirrors.school_id <> ''", day).
		Group("player_mirrors.school_id").
		Scan(&counts).Error
	if err != nil {
		return err
	}

	now := time.Now()
	for _, c := range counts {
		row := models.DailyActivity{
			ID:            uuid.NewString(),
			SchoolID:      c.SchoolID,
			Day:           day,
			ActivePlayers: c.Players,
			ComputedAt:    now,
		}
		err := r.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "school_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"active_players", "computed_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
