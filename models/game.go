// models/game.go
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GameStatusDraft     = "draft"
	GameStatusPublished = "published"
	GameStatusArchived  = "archived"
)

// Fallback values applied when a catalog row is missing a numeric config
// field (zero in the DB). Kept in one place so the engine and the scorer
// agree on them.
const (
	DefaultMaxTime  = 60 // seconds per level
	DefaultMaxLevel = 3
	DefaultMaxRetry = 3 // lives per level
)

type Game struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Description string `json:"description"`

	// 🖼️ Catalog logo (public R2 URL)
	LogoURL string `json:"logo_url"`

	// Per-game session config consumed by the engine
	MaxLevel int `json:"max_level" gorm:"default:0"` // 0 → DefaultMaxLevel
	MaxRetry int `json:"max_retry" gorm:"default:0"` // 0 → DefaultMaxRetry
	MaxTime  int `json:"max_time" gorm:"default:0"`  // seconds, 0 → DefaultMaxTime

	Status string `json:"status" gorm:"default:'draft'"` // draft | published | archived

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// GameConfig is the resolved, fallback-applied view of a Game's session
// config. All fields are guaranteed positive.
type GameConfig struct {
	MaxLevel int `json:"max_level"`
	MaxRetry int `json:"max_retry"`
	MaxTime  int `json:"max_time"`
}

// Resolved applies the documented fallbacks to missing numeric fields.
func (g *Game) Resolved() GameConfig {
	cfg := GameConfig{
		MaxLevel: g.MaxLevel,
		MaxRetry: g.MaxRetry,
		MaxTime:  g.MaxTime,
	}
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = DefaultMaxLevel
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = DefaultMaxRetry
	}
	if cfg.MaxTime <= 0 {
		cfg.MaxTime = DefaultMaxTime
	}
	return cfg
}
