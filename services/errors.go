package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for unknown matches, predictions and groups.
var ErrNotFound = errors.New("not found")

// ValidationError reports which set-score rule failed and at which set.
// SetIndex is 1-based for display; 0 means the claimed summary itself is bad.
type ValidationError struct {
	SetIndex int
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.SetIndex == 0 {
		return e.Reason
	}
	return fmt.Sprintf("set %d: %s", e.SetIndex, e.Reason)
}

// LockedError means a prediction was submitted after closure.
type LockedError struct {
	MatchID string
	LocksAt time.Time // instant past which submissions close
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("predictions for match %s closed at %s", e.MatchID, e.LocksAt.Format(time.RFC3339))
}

// CooldownError means risky mode is still cooling down for this user+group.
type CooldownError struct {
	NextAvailable time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("risky mode on cooldown until %s", e.NextAvailable.Format(time.RFC3339))
}

// SourceUnavailableError isolates one group's failed sync; the sweep logs it
// and moves on to the next group.
type SourceUnavailableError struct {
	GroupID   string
	SourceURL string
	Err       error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable for group %s: %v", e.SourceURL, e.GroupID, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
