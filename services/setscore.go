package services

import (
	"fmt"

	"volley-predict-system/models"
)

// Volleyball set thresholds: a set is won at 25 points (15 for a deciding
// fifth set) with a margin of at least two.
const (
	setPointThreshold      = 25
	fifthSetPointThreshold = 15
	maxSets                = 5
)

// impliedSetCount returns how many sets a decided summary implies:
// 3-0 → 3, 3-1 → 4, 3-2 → 5.
func impliedSetCount(home, away int) int {
	return home + away
}

// ValidateSummary checks a claimed summary score on its own: each side 0-3,
// no draw, exactly one side reaching 3.
func ValidateSummary(predHome, predAway int) error {
	if predHome < 0 || predHome > models.SetsToWin || predAway < 0 || predAway > models.SetsToWin {
		return &ValidationError{Reason: "sets won must be between 0 and 3"}
	}
	if predHome == predAway {
		return &ValidationError{Reason: "a volleyball match cannot end in a draw"}
	}
	if predHome != models.SetsToWin && predAway != models.SetsToWin {
		return &ValidationError{Reason: "one side must win exactly 3 sets"}
	}
	return nil
}

// ValidateSetScores checks that an ordered per-set score sequence is
// internally consistent and matches the claimed summary (sets won per side).
// Returns nil or a *ValidationError naming the violated rule and the 1-based
// set index, suitable for display to the submitting user.
func ValidateSetScores(predHome, predAway int, sets []models.SetScore) error {
	if err := ValidateSummary(predHome, predAway); err != nil {
		return err
	}
	if len(sets) > maxSets {
		return &ValidationError{SetIndex: maxSets + 1, Reason: "a match has at most 5 sets"}
	}

	tallyHome, tallyAway := 0, 0
	filled := 0
	for i, set := range sets {
		idx := i + 1
		decided := tallyHome == models.SetsToWin || tallyAway == models.SetsToWin

		if decided {
			if !set.IsPlaceholder() {
				return &ValidationError{SetIndex: idx, Reason: "extra set after match is already decided"}
			}
			continue
		}
		if set.IsPlaceholder() {
			return &ValidationError{SetIndex: idx, Reason: "set left empty before the match is decided"}
		}
		if set.Home == set.Away {
			return &ValidationError{SetIndex: idx, Reason: "a set cannot end in a tie"}
		}

		threshold := setPointThreshold
		if idx == maxSets {
			threshold = fifthSetPointThreshold
		}
		lead, trail := set.Home, set.Away
		if set.Away > set.Home {
			lead, trail = set.Away, set.Home
		}
		if lead < threshold {
			return &ValidationError{SetIndex: idx, Reason: fmt.Sprintf("winning side must reach at least %d points", threshold)}
		}
		if lead-trail < 2 {
			return &ValidationError{SetIndex: idx, Reason: "invalid margin: sets are won by at least 2 points"}
		}

		if set.Home > set.Away {
			tallyHome++
		} else {
			tallyAway++
		}
		filled++
	}

	if tallyHome != predHome || tallyAway != predAway {
		return &ValidationError{
			Reason: fmt.Sprintf("summary %d-%d does not match detailed sets (%d-%d)", predHome, predAway, tallyHome, tallyAway),
		}
	}
	if expected := impliedSetCount(predHome, predAway); filled != expected {
		return &ValidationError{
			Reason: fmt.Sprintf("a %d-%d result needs exactly %d played sets, got %d", predHome, predAway, expected, filled),
		}
	}
	return nil
}
