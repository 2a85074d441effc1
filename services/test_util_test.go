package services

import (
	"testing"
	"time"

	"edu-game-system/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory SQLite DB with the full schema. One
// connection only, so the pool cannot split the :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Game{},
		&models.School{},
		&models.PlayerMirror{},
		&models.LevelProgress{},
		&models.LevelRecord{},
		&models.ScoreEntry{},
		&models.DailyActivity{},
	))
	return db
}

// fixedClock pins the engine to a known instant (a Tuesday, mid-day local).
var testInstant = time.Date(2025, 3, 4, 12, 0, 0, 0, time.Local)

func newTestEngine(t *testing.T, db *gorm.DB) *SessionService {
	t.Helper()

	engine := NewSessionService(db, NewCatalogService(db))
	engine.Now = func() time.Time { return testInstant }
	return engine
}

// seedGame inserts a catalog row and returns its ID.
func seedGame(t *testing.T, db *gorm.DB, maxLevel, maxRetry, maxTime int) string {
	return seedGameNamed(t, db, "Word Builder", maxLevel, maxRetry, maxTime)
}

func seedGameNamed(t *testing.T, db *gorm.DB, name string, maxLevel, maxRetry, maxTime int) string {
	t.Helper()

	game := models.Game{
		Name:     name,
		MaxLevel: maxLevel,
		MaxRetry: maxRetry,
		MaxTime:  maxTime,
		Status:   models.GameStatusPublished,
	}
	catalog := NewCatalogService(db)
	require.NoError(t, catalog.CreateGame(&game))
	return game.ID
}
