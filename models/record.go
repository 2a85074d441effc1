// models/record.go
package models

const (
	RecordStatusOngoing = "ongoing"
	RecordStatusPassed  = "passed"
	RecordStatusFailed  = "failed"
)

// LevelRecord tracks a single level attempt: the lives budget, every try's
// elapsed time, and the final outcome. Exactly one record exists per
// (progress, level) — the unique index backs the lazy get-or-create — so
// within a day there is never more than one open record for a level.
// Records belonging to a past day that were left open are closed by the
// maintenance job, never resumed.
type LevelRecord struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	ProgressID string `json:"progress_id" gorm:"uniqueIndex:idx_record_level;not null"`
	Level      int    `json:"level" gorm:"uniqueIndex:idx_record_level;not null"`

	// Denormalized for leaderboard/window queries without a join
	ExternalUserID string `json:"external_user_id" gorm:"index;not null"`
	GameID         string `json:"game_id" gorm:"index;not null"`

	LivesLeft    int       `json:"lives_left"`
	AttemptCount int       `json:"attempt_count" gorm:"default:0"`
	Times        []float64 `json:"times" gorm:"serializer:json"` // elapsed seconds, one per try

	Status string `json:"status" gorm:"default:'ongoing'"` // ongoing | passed | failed
	Open   bool   `json:"open" gorm:"default:true"`

	Timestamps
}
