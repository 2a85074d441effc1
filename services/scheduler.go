// services/scheduler.go
package services

import (
	"log"
	"time"

	"edu-game-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMaintenanceScheduler runs the hourly cleanup: level records left
// open on a past day are closed as failed (without scoring) so yesterday's
// half-finished attempt can never satisfy a get-or-open today.
func (s *SessionService) StartMaintenanceScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			today := s.todayKey()

			var stale []models.LevelRecord
			err := s.DB.
				Joins("JOIN level_progresses ON level_progresses.id = level_records.progress_id").
				Where("level_records.open = ? AND level_progresses.day < ?", true, today).
				Find(&stale).Error
			if err != nil {
				log.Printf("[MAINTENANCE] DB error: %v", err)
				return
			}

			for _, rec := range stale {
				res := s.DB.Model(&models.LevelRecord{ID: rec.ID}).
					Where("open = ?", true).
					Select("Status", "Open").
					Updates(models.LevelRecord{Status: models.RecordStatusFailed, Open: false})
				if res.Error != nil {
					log.Printf("[MAINTENANCE] Failed to close stale record %s: %v", rec.ID, res.Error)
				}
			}
			if len(stale) > 0 {
				log.Printf("✅ [MAINTENANCE] Closed %d stale level record(s)", len(stale))
			}
		}),
	)
}
