// services/leaderboard_service.go
package services

import (
	"sort"
	"time"

	"edu-game-system/models"

	"gorm.io/gorm"
)

// LeaderboardSize caps the daily ranking.
const LeaderboardSize = 10

// LeaderboardService ranks the day's score entries for a game. Read-only:
// it runs concurrently with the engine and tolerates scores written while
// it aggregates (the view is recomputed on every request).
type LeaderboardService struct {
	DB *gorm.DB

	// Now pins the day window in tests.
	Now func() time.Time
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db, Now: time.Now}
}

// Leaderboard is the daily ranking for one game: the overall top list plus
// the same list partitioned per school. Ranks are positions in the overall
// list, preserved in the per-school slices.
type Leaderboard struct {
	GameID   string                               `json:"game_id"`
	Day      string                               `json:"day"`
	Overall  []models.LeaderboardEntry            `json:"overall"`
	BySchool map[string][]models.LeaderboardEntry `json:"by_school"`
}

// dayWindow returns [00:00:00, 23:59:59.999] of the current day in the
// deployment's local zone.
func (s *LeaderboardService) dayWindow() (time.Time, time.Time, string) {
	now := s.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end, start.Format(DayKeyFormat)
}

// GetDailyLeaderboard aggregates today's scores for a game:
//
//  1. load the day's score entries,
//  2. average per (player, level),
//  3. average those per player → the player's daily value,
//  4. sort descending, take the top LeaderboardSize,
//  5. partition by the player's school.
//
// Ties order by the player's earliest score in the window, then by player
// ID, so repeated reads paginate identically.
func (s *LeaderboardService) GetDailyLeaderboard(gameID string) (*Leaderboard, error) {
	start, end, day := s.dayWindow()

	var entries []models.ScoreEntry
	err := s.DB.Where("game_id = ? AND created_at BETWEEN ? AND ?", gameID, start, end).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	type levelKey struct {
		user  string
		level int
	}
	levelSum := make(map[levelKey]float64)
	levelCount := make(map[levelKey]int)
	firstSeen := make(map[string]time.Time)

	for _, e := range entries {
		k := levelKey{e.ExternalUserID, e.Level}
		levelSum[k] += e.Value
		levelCount[k]++
		if _, ok := firstSeen[e.ExternalUserID]; !ok {
			firstSeen[e.ExternalUserID] = e.CreatedAt
		}
	}

	userSum := make(map[string]float64)
	userLevels := make(map[string]int)
	for k, sum := range levelSum {
		userSum[k.user] += sum / float64(levelCount[k])
		userLevels[k.user]++
	}

	ranked := make([]models.LeaderboardEntry, 0, len(userSum))
	for user, sum := range userSum {
		ranked = append(ranked, models.LeaderboardEntry{
			ExternalUserID: user,
			Value:          sum / float64(userLevels[user]),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		fi, fj := firstSeen[ranked[i].ExternalUserID], firstSeen[ranked[j].ExternalUserID]
		if !fi.Equal(fj) {
			return fi.Before(fj)
		}
		return ranked[i].ExternalUserID < ranked[j].ExternalUserID
	})

	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}

	// Resolve names + schools from the directory mirror in one query.
	// Players the sync has not mirrored yet stay in the overall list with an
	// empty school.
	ids := make([]string, len(ranked))
	for i := range ranked {
		ids[i] = ranked[i].ExternalUserID
	}
	var mirrors []models.PlayerMirror
	if len(ids) > 0 {
		if err := s.DB.Where("external_user_id IN ?", ids).Find(&mirrors).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[string]models.PlayerMirror, len(mirrors))
	for _, m := range mirrors {
		byID[m.ExternalUserID] = m
	}

	board := &Leaderboard{
		GameID:   gameID,
		Day:      day,
		Overall:  ranked,
		BySchool: make(map[string][]models.LeaderboardEntry),
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		if m, ok := byID[ranked[i].ExternalUserID]; ok {
			ranked[i].DisplayName = m.DisplayName
			ranked[i].SchoolID = m.SchoolID
		}
		if ranked[i].SchoolID != "" {
			board.BySchool[ranked[i].SchoolID] = append(board.BySchool[ranked[i].SchoolID], ranked[i])
		}
	}

	return board, nil
}

// GetSchoolLeaderboard is GetDailyLeaderboard narrowed to one school's
// sub-list. Unknown schools yield an empty list, not an error.
func (s *LeaderboardService) GetSchoolLeaderboard(gameID, schoolID string) ([]models.LeaderboardEntry, error) {
	board, err := s.GetDailyLeaderboard(gameID)
	if err != nil {
		return nil, err
	}
	sub := board.BySchool[schoolID]
	if sub == nil {
		sub = []models.LeaderboardEntry{}
	}
	return sub, nil
}
