// models/score.go
package models

import "time"

// ScoreEntry is one normalized score produced when a player passes a level.
// It is derived data: the leaderboard reads it, nothing else does, and the
// engine can always recompute it from the level record.
type ScoreEntry struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalUserID string  `json:"external_user_id" gorm:"index;not null"`
	GameID         string  `json:"game_id" gorm:"index;not null"`
	Level          int     `json:"level"`
	Value          float64 `json:"value"` // in [0,100]

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// LeaderboardEntry is a derived view row, never stored.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	ExternalUserID string  `json:"external_user_id"`
	DisplayName    string  `json:"display_name,omitempty"`
	SchoolID       string  `json:"school_id,omitempty"`
	Value          float64 `json:"value"` // daily average, see leaderboard service
}
