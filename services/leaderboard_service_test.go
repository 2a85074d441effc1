package services

import (
	"fmt"
	"testing"
	"time"

	"edu-game-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLeaderboard(t *testing.T, db *gorm.DB) *LeaderboardService {
	t.Helper()
	lb := NewLeaderboardService(db)
	lb.Now = func() time.Time { return testInstant }
	return lb
}

func seedScore(t *testing.T, db *gorm.DB, userID, gameID string, level int, value float64, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.ScoreEntry{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		GameID:         gameID,
		Level:          level,
		Value:          value,
		CreatedAt:      at,
	}).Error)
}

func seedPlayer(t *testing.T, db *gorm.DB, userID, displayName, schoolID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.PlayerMirror{
		ID:             uuid.NewString(),
		ExternalUserID: userID,
		Username:       userID,
		DisplayName:    displayName,
		SchoolID:       schoolID,
		SyncedAt:       testInstant,
	}).Error)
}

func TestLeaderboardOrdersByDailyAverage(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)

	at := testInstant
	seedScore(t, db, "alice", gameID, 1, 80, at)
	seedScore(t, db, "bob", gameID, 1, 95, at.Add(time.Minute))
	seedScore(t, db, "carol", gameID, 1, 60, at.Add(2*time.Minute))

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)
	require.Len(t, board.Overall, 3)

	assert.Equal(t, "bob", board.Overall[0].ExternalUserID)
	assert.Equal(t, "alice", board.Overall[1].ExternalUserID)
	assert.Equal(t, "carol", board.Overall[2].ExternalUserID)
	assert.Equal(t, []int{1, 2, 3}, []int{board.Overall[0].Rank, board.Overall[1].Rank, board.Overall[2].Rank})
}

// The daily value averages per level first, then across levels, so a player
// grinding one level many times cannot outweigh level depth.
func TestLeaderboardAveragesPerLevelThenAcross(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)

	at := testInstant
	// alice: level 1 avg = (60+80)/2 = 70, level 2 = 90 → daily 80
	seedScore(t, db, "alice", gameID, 1, 60, at)
	seedScore(t, db, "alice", gameID, 1, 80, at.Add(time.Minute))
	seedScore(t, db, "alice", gameID, 2, 90, at.Add(2*time.Minute))
	// bob: single level at 75 → daily 75
	seedScore(t, db, "bob", gameID, 1, 75, at)

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)
	require.Len(t, board.Overall, 2)

	assert.Equal(t, "alice", board.Overall[0].ExternalUserID)
	assert.InDelta(t, 80.0, board.Overall[0].Value, 1e-9)
	assert.InDelta(t, 75.0, board.Overall[1].Value, 1e-9)
}

func TestLeaderboardIgnoresOtherDaysAndGames(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)
	otherGame := seedGameNamed(t, db, "Math Sprint", 3, 3, 60)

	seedScore(t, db, "alice", gameID, 1, 80, testInstant)
	seedScore(t, db, "bob", gameID, 1, 95, testInstant.AddDate(0, 0, -1)) // yesterday
	seedScore(t, db, "carol", otherGame, 1, 99, testInstant)              // other game

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)
	require.Len(t, board.Overall, 1)
	assert.Equal(t, "alice", board.Overall[0].ExternalUserID)
}

// Equal averages order by earliest score in the window, then player ID.
func TestLeaderboardTieBreakIsDeterministic(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)

	seedScore(t, db, "late", gameID, 1, 85, testInstant.Add(time.Hour))
	seedScore(t, db, "early", gameID, 1, 85, testInstant)

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)
	require.Len(t, board.Overall, 2)
	assert.Equal(t, "early", board.Overall[0].ExternalUserID)
	assert.Equal(t, "late", board.Overall[1].ExternalUserID)

	// Same timestamp → player ID decides
	db2 := newTestDB(t)
	lb2 := newTestLeaderboard(t, db2)
	game2 := seedGame(t, db2, 3, 3, 60)
	seedScore(t, db2, "zoe", game2, 1, 85, testInstant)
	seedScore(t, db2, "adam", game2, 1, 85, testInstant)

	board, err = lb2.GetDailyLeaderboard(game2)
	require.NoError(t, err)
	assert.Equal(t, "adam", board.Overall[0].ExternalUserID)
}

func TestLeaderboardTopTenCap(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)

	for i := 0; i < 15; i++ {
		seedScore(t, db, fmt.Sprintf("player-%02d", i), gameID, 1, float64(50+i), testInstant)
	}

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)
	assert.Len(t, board.Overall, LeaderboardSize)
	// Best value first
	assert.Equal(t, "player-14", board.Overall[0].ExternalUserID)
}

func TestLeaderboardSchoolPartition(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)

	seedPlayer(t, db, "alice", "Alice", "school-north")
	seedPlayer(t, db, "bob", "Bob", "school-south")
	seedPlayer(t, db, "carol", "Carol", "school-north")

	seedScore(t, db, "alice", gameID, 1, 80, testInstant)
	seedScore(t, db, "bob", gameID, 1, 95, testInstant)
	seedScore(t, db, "carol", gameID, 1, 60, testInstant)

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)

	north := board.BySchool["school-north"]
	require.Len(t, north, 2)
	assert.Equal(t, "alice", north[0].ExternalUserID)
	assert.Equal(t, "carol", north[1].ExternalUserID)
	// Ranks are positions in the overall list, preserved in the partition
	assert.Equal(t, 2, north[0].Rank)
	assert.Equal(t, 3, north[1].Rank)

	south, err := lb.GetSchoolLeaderboard(gameID, "school-south")
	require.NoError(t, err)
	require.Len(t, south, 1)
	assert.Equal(t, "bob", south[0].ExternalUserID)
	assert.Equal(t, "Bob", south[0].DisplayName)

	empty, err := lb.GetSchoolLeaderboard(gameID, "school-nowhere")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// Players the directory sync has not mirrored yet stay on the overall list
// with no school.
func TestLeaderboardUnmirroredPlayer(t *testing.T) {
	db := newTestDB(t)
	lb := newTestLeaderboard(t, db)
	gameID := seedGame(t, db, 3, 3, 60)

	seedScore(t, db, "ghost", gameID, 1, 88, testInstant)

	board, err := lb.GetDailyLeaderboard(gameID)
	require.NoError(t, err)
	require.Len(t, board.Overall, 1)
	assert.Equal(t, "", board.Overall[0].SchoolID)
	assert.Empty(t, board.BySchool)
}
