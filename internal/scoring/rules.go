// Package scoring holds the pure game rules: points, streak tiers, hearts and
// bonus time. Apply has no side effects and no clock; identical inputs always
// produce identical outputs, so the whole policy is testable without storage.
package scoring

import (
	"math"

	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/model"
)

// Rules captures the configured policy values.
type Rules struct {
	PointsPerCorrectAnswer int
	StreakThreshold        int
	StreakDecrementOnWrong int
	MaxAwardableStreaks    int
	BonusSeconds           float64
	MaxTotalSeconds        float64
	MaxHearts              float64
	MinHearts              float64
	HeartDecrementOnWrong  float64
}

// FromConfig builds Rules from the loaded game configuration.
func FromConfig(g config.GameConfig) Rules {
	return Rules{
		PointsPerCorrectAnswer: g.PointsPerCorrectAnswer,
		StreakThreshold:        g.StreakThreshold,
		StreakDecrementOnWrong: g.StreakDecrementOnWrong,
		MaxAwardableStreaks:    g.MaxAwardableStreaks,
		BonusSeconds:           g.BonusSeconds,
		MaxTotalSeconds:        g.MaxTotalSeconds,
		MaxHearts:              g.MaxHearts,
		MinHearts:              g.MinHearts,
		HeartDecrementOnWrong:  g.HeartDecrementOnWrong,
	}
}

// State is the slice of session state the policy reads.
type State struct {
	StreakProgress   int
	StreaksCompleted int
	HeartsRemaining  float64
	TimeLeft         float64
}

// Outcome is the result of applying the policy to one answer.
type Outcome struct {
	PointsEarned     int
	StreakProgress   int
	StreaksCompleted int
	TierCompleted    bool
	BonusAwarded     float64
	HeartsRemaining  float64
	TimeLeft         float64
	ShouldEnd        bool
	GameOverReason   string
}

// Apply evaluates one answer against the current state.
//
// Correct: flat points, streak progress +1; on reaching the threshold a tier
// completes and progress keeps the remainder. Tiers past MaxAwardableStreaks
// still complete but award no bonus time, and the applied bonus is capped so
// TimeLeft never exceeds MaxTotalSeconds.
//
// Incorrect: streak progress decremented (floored at 0, no cross-tier
// borrowing), hearts decremented and rounded to the nearest half heart; at
// the heart floor the session ends with the hearts.depleted reason.
func (r Rules) Apply(s State, correct bool) Outcome {
	out := Outcome{
		StreakProgress:   s.StreakProgress,
		StreaksCompleted: s.StreaksCompleted,
		HeartsRemaining:  s.HeartsRemaining,
		TimeLeft:         s.TimeLeft,
	}

	if correct {
		out.PointsEarned = r.PointsPerCorrectAnswer
		out.StreakProgress++

		if out.StreakProgress >= r.StreakThreshold {
			out.TierCompleted = true
			out.StreakProgress -= r.StreakThreshold

			if out.StreaksCompleted < r.MaxAwardableStreaks {
				out.StreaksCompleted++
				out.BonusAwarded = math.Max(0, math.Min(r.BonusSeconds, r.MaxTotalSeconds-s.TimeLeft))
				out.TimeLeft += out.BonusAwarded
			}
		}
		return out
	}

	out.StreakProgress -= r.StreakDecrementOnWrong
	if out.StreakProgress < 0 {
		out.StreakProgress = 0
	}

	out.HeartsRemaining = roundHalf(s.HeartsRemaining - r.HeartDecrementOnWrong)
	if out.HeartsRemaining <= r.MinHearts {
		out.HeartsRemaining = r.MinHearts
		out.ShouldEnd = true
		out.GameOverReason = model.GameOverHeartsDepleted
	}
	return out
}

// roundHalf rounds to the nearest 0.5 heart.
func roundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
