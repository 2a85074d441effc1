// models/activity.go
package models

import "time"

// DailyActivity is a per-school counter of players seen on a given day,
// recomputed periodically by the activity worker (dashboard feed).
type DailyActivity struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	SchoolID      string    `json:"school_id" gorm:"uniqueIndex:idx_activity_day;not null"`
	Day           string    `json:"day" gorm:"uniqueIndex:idx_activity_day;not null"` // "2006-01-02"
	ActivePlayers int64     `json:"active_players"`
	ComputedAt    time.Time `json:"computed_at"`
}
