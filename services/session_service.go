// services/session_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"edu-game-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// DayKeyFormat keys the daily progress rows.
const DayKeyFormat = "2006-01-02"

// SessionService is the play-session engine: it owns the daily LevelProgress
// rows and the per-level LevelRecord rows, applies outcome reports, and
// persists a normalized ScoreEntry on every pass.
//
// Concurrency: a keyed mutex serializes same-process reports per
// (player, game); across processes the unique indexes plus open/locked
// conditional updates make racing reports lose cleanly (ErrStaleAttempt)
// instead of double-decrementing.
type SessionService struct {
	DB      *gorm.DB
	Catalog *CatalogService
	Weights ScoreWeights

	// Now is the engine clock; tests override it to pin the day key.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionService(db *gorm.DB, catalog *CatalogService) *SessionService {
	return &SessionService{
		DB:      db,
		Catalog: catalog,
		Weights: DefaultScoreWeights,
		Now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockKey serializes writers for one (player, game) pair. Entries are kept
// for the process lifetime; the map is bounded by the day's active pairs.
func (s *SessionService) lockKey(userID, gameID string) func() {
	key := userID + "|" + gameID
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *SessionService) todayKey() string {
	return s.Now().Format(DayKeyFormat)
}

// GetProgress returns today's progress for the player/game, creating it
// with the documented defaults (current = 1, unlocked) if this is the first
// touch of the day. Idempotent: a second call the same day returns the same
// row untouched.
func (s *SessionService) GetProgress(userID, gameID string) (*models.LevelProgress, error) {
	return s.GetProgressStartingAt(userID, gameID, 1)
}

// GetProgressStartingAt is GetProgress with a caller-supplied starting
// level. The value only matters on the day's first call; an existing row is
// returned as-is.
func (s *SessionService) GetProgressStartingAt(userID, gameID string, initialCurrent int) (*models.LevelProgress, error) {
	if _, err := s.Catalog.GetConfig(gameID); err != nil {
		return nil, err
	}
	return s.getOrInitProgress(s.DB, userID, gameID, initialCurrent)
}

// getOrInitProgress is the constraint-backed get-or-create: insert with
// DO NOTHING on the (user, game, day) unique index, then read back the
// winner. Two racing first requests both end up with the same row.
func (s *SessionService) getOrInitProgress(db *gorm.DB, userID, gameID string, initialCurrent int) (*models.LevelProgress, error) {
	if initialCurrent < 1 {
		initialCurrent = 1
	}
	day := s.todayKey()

	fresh := models.LevelProgress{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		GameID:         gameID,
		Day:            day,
		Current:        initialCurrent,
		Locked:         false,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}, {Name: "game_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("init daily progress: %w", err)
	}

	var prog models.LevelProgress
	err = db.Where("external_user_id = ? AND game_id = ? AND day = ?", userID, gameID, day).
		First(&prog).Error
	if err != nil {
		return nil, fmt.Errorf("load daily progress: %w", err)
	}
	return &prog, nil
}

// getOrOpenRecord returns the level record for (progress, level), creating
// it with a full lives budget on first touch. Same DO NOTHING + read-back
// pattern as the progress row.
func (s *SessionService) getOrOpenRecord(db *gorm.DB, prog *models.LevelProgress, budget int) (*models.LevelRecord, error) {
	fresh := models.LevelRecord{
		ID:             uuid.NewString(),
		ProgressID:     prog.ID,
		Level:          prog.Current,
		ExternalUserID: prog.ExternalUserID,
		GameID:         prog.GameID,
		LivesLeft:      budget,
		AttemptCount:   0,
		Times:          []float64{},
		Status:         models.RecordStatusOngoing,
		Open:           true,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "progress_id"}, {Name: "level"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("open level record: %w", err)
	}

	var rec models.LevelRecord
	err = db.Where("progress_id = ? AND level = ?", prog.ID, prog.Current).First(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("load level record: %w", err)
	}
	return &rec, nil
}

// ReportOutcome applies one try to today's session.
//
//   - success: record passed + closed, progress advances one level, a
//     normalized ScoreEntry is persisted.
//   - failed with lives remaining: one life burned, record stays open.
//   - failed burning the last life: record failed + closed, the day's
//     progress locks.
//
// Reports against a locked day fail with ErrProgressLocked; reports that
// lose a race against a closing report fail with ErrStaleAttempt and leave
// state untouched.
func (s *SessionService) ReportOutcome(userID, gameID, outcome string, elapsedSeconds float64) (*models.LevelRecord, *models.LevelProgress, error) {
	if outcome != OutcomeSuccess && outcome != OutcomeFailed {
		return nil, nil, fmt.Errorf("%w: outcome %q", ErrInvalidOutcome, outcome)
	}
	if elapsedSeconds < 0 {
		return nil, nil, fmt.Errorf("%w: negative elapsed time", ErrInvalidOutcome)
	}

	cfg, err := s.Catalog.GetConfig(gameID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockKey(userID, gameID)
	defer unlock()

	var rec *models.LevelRecord
	var prog *models.LevelProgress

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		prog, txErr = s.getOrInitProgress(tx, userID, gameID, 1)
		if txErr != nil {
			return txErr
		}
		if prog.Locked {
			return ErrProgressLocked
		}

		rec, txErr = s.getOrOpenRecord(tx, prog, cfg.MaxRetry)
		if txErr != nil {
			return txErr
		}
		if !rec.Open || rec.Level != prog.Current {
			return ErrStaleAttempt
		}

		rec.AttemptCount++
		rec.Times = append(rec.Times, elapsedSeconds)

		if outcome == OutcomeSuccess {
			rec.Status = models.RecordStatusPassed
			rec.Open = false
			if txErr = s.closeRecord(tx, rec); txErr != nil {
				return txErr
			}
			if txErr = s.advance(tx, prog); txErr != nil {
				return txErr
			}
			return s.persistScore(tx, rec, cfg, elapsedSeconds)
		}

		// failure: burn a life, then close + lock once the budget is gone
		if rec.LivesLeft > 0 {
			rec.LivesLeft--
		}
		if rec.LivesLeft == 0 {
			rec.Status = models.RecordStatusFailed
			rec.Open = false
			if txErr = s.closeRecord(tx, rec); txErr != nil {
				return txErr
			}
			return s.lock(tx, prog)
		}
		return s.saveTry(tx, rec)
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, prog, nil
}

// saveTry writes a non-terminal try. Conditional on open = true so a racing
// closing report wins and this one surfaces as stale.
func (s *SessionService) saveTry(tx *gorm.DB, rec *models.LevelRecord) error {
	res := tx.Model(&models.LevelRecord{ID: rec.ID}).
		Where("open = ?", true).
		Select("AttemptCount", "Times", "LivesLeft").
		Updates(models.LevelRecord{
			AttemptCount: rec.AttemptCount,
			Times:        rec.Times,
			LivesLeft:    rec.LivesLeft,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleAttempt
	}
	return nil
}

// closeRecord writes a terminal transition (passed or failed), again keyed
// on open = true.
func (s *SessionService) closeRecord(tx *gorm.DB, rec *models.LevelRecord) error {
	res := tx.Model(&models.LevelRecord{ID: rec.ID}).
		Where("open = ?", true).
		Select("AttemptCount", "Times", "LivesLeft", "Status", "Open").
		Updates(models.LevelRecord{
			AttemptCount: rec.AttemptCount,
			Times:        rec.Times,
			LivesLeft:    rec.LivesLeft,
			Status:       rec.Status,
			Open:         rec.Open,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleAttempt
	}
	return nil
}

// advance bumps the level pointer; only an unlocked row may move.
func (s *SessionService) advance(tx *gorm.DB, prog *models.LevelProgress) error {
	res := tx.Model(&models.LevelProgress{}).
		Where("id = ? AND locked = ?", prog.ID, false).
		Update("current", prog.Current+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProgressLocked
	}
	prog.Current++
	return nil
}

// lock freezes the day. Irreversible: nothing ever writes locked = false.
func (s *SessionService) lock(tx *gorm.DB, prog *models.LevelProgress) error {
	err := tx.Model(&models.LevelProgress{}).
		Where("id = ?", prog.ID).
		Update("locked", true).Error
	if err != nil {
		return err
	}
	prog.Locked = true
	return nil
}

// persistScore converts the winning try into a ScoreEntry for the
// leaderboard. TimeInSeconds is the winning try's elapsed time; TryCount
// and LivesLeftBonus come off the closed record.
func (s *SessionService) persistScore(tx *gorm.DB, rec *models.LevelRecord, cfg models.GameConfig, elapsedSeconds float64) error {
	value := Score(RawScore{
		TimeInSeconds:  elapsedSeconds,
		Level:          rec.Level,
		TryCount:       rec.AttemptCount,
		LivesLeftBonus: rec.LivesLeft,
	}, cfg, s.Weights)

	entry := models.ScoreEntry{
		ID:             uuid.NewString(),
		ExternalUserID: rec.ExternalUserID,
		GameID:         rec.GameID,
		Level:          rec.Level,
		Value:          value,
		CreatedAt:      s.Now(),
	}
	return tx.Create(&entry).Error
}

// ComputeScore resolves the game config and runs the normalizer without
// touching any session state (score preview endpoint).
func (s *SessionService) ComputeScore(raw RawScore, gameID string) (float64, error) {
	if raw.TimeInSeconds < 0 || raw.Level < 0 || raw.TryCount < 0 || raw.LivesLeftBonus < 0 {
		return 0, fmt.Errorf("%w: negative telemetry", ErrInvalidOutcome)
	}
	cfg, err := s.Catalog.GetConfig(gameID)
	if err != nil {
		return 0, err
	}
	return Score(raw, cfg, s.Weights), nil
}
