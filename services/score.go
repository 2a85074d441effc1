// services/score.go
package services

import (
	"edu-game-system/models"
)

// ScoreWeights define the relative weight of each telemetry factor
// (tunable per game later without code change).
type ScoreWeights struct {
	Time  float64 // penalty weight on elapsed time
	Level float64 // reward weight on level depth
	Tries float64 // reward weight on few tries
	Lives float64 // reward weight on remaining lives
}

var DefaultScoreWeights = ScoreWeights{
	Time:  0.4,
	Level: 0.3,
	Tries: 0.2,
	Lives: 0.1,
}

// RawScore is the attempt telemetry fed into Score.
type RawScore struct {
	TimeInSeconds  float64 `json:"time_in_seconds"`
	Level          int     `json:"level"`
	TryCount       int     `json:"try_count"`
	LivesLeftBonus int     `json:"lives_left_bonus"`
}

// normalize maps v from [min,max] into [0,1], squared so that differences
// near the top of the range count more than differences near the bottom.
// Callers are expected to pass v within [min,max]; out-of-range inputs are
// not clamped here.
func normalize(v, min, max float64) float64 {
	n := (v - min) / (max - min)
	return n * n
}

// scaleLinear maps v from [inMin,inMax] into [outMin,outMax].
// e.g., scaleLinear(v, 0, 1, 1, 100) = v*99 + 1
func scaleLinear(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)/(inMax-inMin)*(outMax-outMin) + outMin
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Score converts raw attempt telemetry into a value in [0,100].
//
// Each factor is normalized against the game config, combined as
//
//	(1 - wTime*normTime) + wLevel*normLevel + wTries*(1/(normTries+1)) + wLives*normLives
//
// then scaled from the nominal [0,1] domain onto [1,100] and clamped to
// [0,100]. Pure: identical inputs always produce bit-identical output.
func Score(raw RawScore, cfg models.GameConfig, w ScoreWeights) float64 {
	// Guard the divisors; a zero field would be a catalog row that skipped
	// Resolved(). Same literals as the documented fallbacks.
	maxTime := float64(cfg.MaxTime)
	if maxTime <= 0 {
		maxTime = models.DefaultMaxTime
	}
	maxLevel := float64(cfg.MaxLevel)
	if maxLevel <= 0 {
		maxLevel = models.DefaultMaxLevel
	}
	maxRetry := float64(cfg.MaxRetry)
	if maxRetry <= 0 {
		maxRetry = models.DefaultMaxRetry
	}

	normTime := normalize(raw.TimeInSeconds, 0, maxTime)
	normLevel := normalize(float64(raw.Level), 0, maxLevel)
	normTries := normalize(float64(raw.TryCount), 0, maxRetry)
	normLives := normalize(float64(raw.LivesLeftBonus), 0, maxRetry)

	weighted := (1 - w.Time*normTime) +
		w.Level*normLevel +
		w.Tries*(1/(normTries+1)) +
		w.Lives*normLives

	return clamp(scaleLinear(weighted, 0, 1, 1, 100), 0, 100)
}
