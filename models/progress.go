// models/progress.go
package models

// LevelProgress is the per-player, per-game, per-day pointer into a game's
// levels. A fresh row is created the first time a player touches a game on a
// calendar day; rows are never reused across days. Once Locked flips true
// the day is over for that player/game — only the next day's row starts
// fresh.
type LevelProgress struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalUserID string `json:"external_user_id" gorm:"uniqueIndex:idx_progress_day;not null"`
	GameID         string `json:"game_id" gorm:"uniqueIndex:idx_progress_day;not null"`

	// Day is the calendar-day component of the row's identity, formatted
	// "2006-01-02" from the engine clock. The unique index over
	// (user, game, day) is what makes concurrent get-or-create safe.
	Day string `json:"day" gorm:"uniqueIndex:idx_progress_day;not null"`

	Current int  `json:"current" gorm:"default:1"` // level pointer
	Locked  bool `json:"locked" gorm:"default:false"`

	Timestamps

	// Populated on demand, never stored
	Records []LevelRecord `json:"records,omitempty" gorm:"foreignKey:ProgressID"`
}
