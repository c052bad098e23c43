package services

import "volley-predict-system/models"

// Point scale for a scored prediction:
//   exact summary          3, plus 2 when every per-set score matches exactly
//   correct winner only    1
//   wrong winner           0
// Risky mode doubles a positive award and turns a miss into -2.
const (
	pointsExactSummary  = 3
	pointsExactSetBonus = 2
	pointsCorrectWinner = 1
	pointsRiskyPenalty  = -2
)

// ComputePoints computes the award for one prediction against the final
// result. Pure and idempotent: re-running after a corrected result yields the
// value to overwrite with, never an increment.
func ComputePoints(actualHome, actualAway int, actualSets []models.SetScore,
	predHome, predAway int, predSets []models.SetScore, risky bool) int {

	if predHome == actualHome && predAway == actualAway {
		pts := pointsExactSummary
		if exactSetMatch(actualSets, predSets) {
			pts += pointsExactSetBonus
		}
		if risky {
			pts *= 2
		}
		return pts
	}

	if (predHome > predAway) == (actualHome > actualAway) {
		if risky {
			return pointsCorrectWinner * 2
		}
		return pointsCorrectWinner
	}

	if risky {
		return pointsRiskyPenalty
	}
	return 0
}

// exactSetMatch requires per-set scores on both sides, of equal length, equal
// pair by pair in order. Same winner sequence with different point counts does
// not earn the bonus.
func exactSetMatch(actual, predicted []models.SetScore) bool {
	if len(actual) == 0 || len(predicted) == 0 || len(actual) != len(predicted) {
		return false
	}
	for i := range actual {
		if actual[i] != predicted[i] {
			return false
		}
	}
	return true
}
