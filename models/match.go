package models

import (
	"encoding/json"
	"time"
)

// Match lifecycle statuses
const (
	MatchScheduled  = "SCHEDULED"
	MatchInProgress = "IN_PROGRESS"
	MatchFinished   = "FINISHED"
	MatchCanceled   = "CANCELED"
)

// SetsToWin is the number of set wins that decides a volleyball match.
const SetsToWin = 3

// SetScore is one per-set point pair. (0,0) is the placeholder for a set
// that was never played.
type SetScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// IsPlaceholder reports whether the set was never played.
func (s SetScore) IsPlaceholder() bool {
	return s.Home == 0 && s.Away == 0
}

// Match is one contest of a group's competition. Created by reconciliation
// (from the first observation of it) or manually; mutated by reconciliation
// and the lifecycle sweeps. Matches referenced by scored predictions are
// soft-deleted only, so historical points keep resolving.
type Match struct {
	ID         string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	GroupID    string  `gorm:"index;not null" json:"group_id"`
	ExternalID *string `gorm:"index" json:"external_id,omitempty"` // stable id at the source, when it has one

	HomeTeam string    `gorm:"index:idx_match_teams_window;not null" json:"home_team"`
	AwayTeam string    `gorm:"index:idx_match_teams_window;not null" json:"away_team"`
	StartAt  time.Time `gorm:"index:idx_match_teams_window;not null" json:"start_at"`

	Status string `gorm:"type:varchar(16);default:'SCHEDULED';check:status IN ('SCHEDULED','IN_PROGRESS','FINISHED','CANCELED')" json:"status"`

	// Summary score, present only once decided
	HomeSets   *int   `json:"home_sets,omitempty"`
	AwaySets   *int   `json:"away_sets,omitempty"`
	ScoresJSON string `gorm:"type:text" json:"-"` // ordered per-set pairs, empty until known

	// Hard lock pinned by the lock sweep at kickoff. The readable lock state
	// is always re-derived from (now, StartAt, IsLocked) — see services.IsLocked.
	IsLocked bool       `gorm:"default:false" json:"is_locked"`
	LockedAt *time.Time `json:"locked_at,omitempty"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	Timestamps
}

// Decided reports whether the match carries a complete summary score.
func (m *Match) Decided() bool {
	return m.HomeSets != nil && m.AwaySets != nil
}

// SetScores decodes the per-set detail. Empty slice when none recorded.
func (m *Match) SetScores() []SetScore {
	return DecodeSetScores(m.ScoresJSON)
}

// EncodeSetScores serializes per-set pairs for a JSON text column.
func EncodeSetScores(sets []SetScore) string {
	if len(sets) == 0 {
		return ""
	}
	b, _ := json.Marshal(sets)
	return string(b)
}

// DecodeSetScores is the inverse of EncodeSetScores; garbage decodes to nil.
func DecodeSetScores(raw string) []SetScore {
	if raw == "" {
		return nil
	}
	var sets []SetScore
	if err := json.Unmarshal([]byte(raw), &sets); err != nil {
		return nil
	}
	return sets
}
