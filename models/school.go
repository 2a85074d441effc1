// models/school.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// School mirrors an organization record owned by the directory service.
// Rows are upserted by the directory sync worker and read-only everywhere
// else in this service.
type School struct {
	ID       string    `json:"id" gorm:"primaryKey"` // directory-side ID, not generated here
	Name     string    `json:"name" gorm:"not null"`
	City     string    `json:"city"`
	Active   bool      `json:"active" gorm:"default:true"`
	SyncedAt time.Time `json:"synced_at"`

	Timestamps
}

// PlayerMirror mirrors a student/player profile from the directory service.
// SchoolID is the grouping key used by the leaderboard partitioning.
type PlayerMirror struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ExternalUserID string    `json:"external_user_id" gorm:"uniqueIndex;not null"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	SchoolID       string    `json:"school_id" gorm:"index"`
	AccountStatus  string    `json:"account_status" gorm:"default:'active'"`
	SyncedAt       time.Time `json:"synced_at"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
