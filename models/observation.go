package models

import "time"

// MatchObservation is one externally reported match record for one sync
// cycle, produced by the observation feed and consumed by the reconciler.
// Ephemeral — never persisted as its own entity.
type MatchObservation struct {
	ExternalID string     `json:"external_id,omitempty"` // empty when the source doesn't key matches
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	StartAt    time.Time  `json:"start_at"`
	Status     string     `json:"status"`
	HomeSets   *int       `json:"home_sets,omitempty"`
	AwaySets   *int       `json:"away_sets,omitempty"`
	SetScores  []SetScore `json:"set_scores,omitempty"`
}

// Decided reports whether the observation carries a complete summary score.
func (o *MatchObservation) Decided() bool {
	return o.HomeSets != nil && o.AwaySets != nil
}
