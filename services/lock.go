package services

import (
	"time"

	"volley-predict-system/models"
)

// PredictionLockLead is how long before kickoff prediction submission closes.
// The hard lock flag itself is only pinned at kickoff by the lock sweep; this
// lead gates submissions earlier.
const PredictionLockLead = 24 * time.Hour

// IsLocked reports whether a match is closed for new or updated predictions.
// Evaluated fresh on every read — the stored flag alone can be stale, since
// "closed" is a function of wall-clock time.
func IsLocked(m *models.Match, now time.Time) bool {
	if m.IsLocked {
		return true
	}
	return !now.Before(m.StartAt.Add(-PredictionLockLead))
}

// LocksAt returns the instant past which predictions close for a match.
func LocksAt(m *models.Match) time.Time {
	if m.IsLocked && m.LockedAt != nil && m.LockedAt.Before(m.StartAt.Add(-PredictionLockLead)) {
		return *m.LockedAt
	}
	return m.StartAt.Add(-PredictionLockLead)
}
