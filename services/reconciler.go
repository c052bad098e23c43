package services

import (
	"context"
	"log"
	"time"

	"volley-predict-system/models"

	"github.com/google/uuid"
)

// ReconcileWindow is the start-time tolerance of the fallback lookup. Sources
// drift by an hour or two between timezone quirks and reschedules; anything
// further apart is a different match.
const ReconcileWindow = 2 * time.Hour

// SyncResult counts what one group reconciliation did.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Reconciler merges a group's observed matches into the authoritative match
// store without duplicating a match or losing locally-known identity.
// Observations are processed in the order supplied; a later observation for
// the same match in the same batch overwrites an earlier one.
type Reconciler struct {
	Matches  MatchStore
	Scorer   *ScoringService
	Producer ObservationProducer
}

func NewReconciler(matches MatchStore, scorer *ScoringService, producer ObservationProducer) *Reconciler {
	return &Reconciler{Matches: matches, Scorer: scorer, Producer: producer}
}

// ReconcileGroup fetches the group's current observations and applies them.
// A stored match absent from the batch is left untouched: absence is no
// information, not a reverted result.
func (r *Reconciler) ReconcileGroup(ctx context.Context, group *models.Group, now time.Time) (SyncResult, error) {
	var res SyncResult
	if group.SourceURL == "" {
		return res, nil
	}

	observations, err := r.Producer.FetchObservations(ctx, group.SourceURL)
	if err != nil {
		return res, &SourceUnavailableError{GroupID: group.ID, SourceURL: group.SourceURL, Err: err}
	}

	for i := range observations {
		obs := &observations[i]
		if obs.HomeTeam == "" || obs.AwayTeam == "" {
			log.Printf("[Reconciler] group %s: skipping observation with missing team names", group.ID)
			continue
		}
		if err := r.applyObservation(group, obs, now, &res); err != nil {
			log.Printf("[Reconciler] group %s: failed to apply observation %s vs %s: %v",
				group.ID, obs.HomeTeam, obs.AwayTeam, err)
		}
	}
	return res, nil
}

// applyObservation resolves one observation against the store: exact lookup by
// external id first, then the windowed team-pair fallback, then create.
func (r *Reconciler) applyObservation(group *models.Group, obs *models.MatchObservation, now time.Time, res *SyncResult) error {
	home := NormalizeTeamName(obs.HomeTeam)
	away := NormalizeTeamName(obs.AwayTeam)

	var match *models.Match
	var err error
	if obs.ExternalID != "" {
		match, err = r.Matches.ByExternalID(group.ID, obs.ExternalID)
		if err != nil {
			return err
		}
	}
	if match == nil {
		match, err = r.Matches.ByTeamsNear(group.ID, home, away, obs.StartAt, ReconcileWindow)
		if err != nil {
			return err
		}
	}

	if match == nil {
		return r.createFromObservation(group, obs, home, away, now, res)
	}
	return r.updateFromObservation(match, obs, now, res)
}

func (r *Reconciler) createFromObservation(group *models.Group, obs *models.MatchObservation, home, away string, now time.Time, res *SyncResult) error {
	m := &models.Match{
		ID:           uuid.NewString(),
		GroupID:      group.ID,
		HomeTeam:     home,
		AwayTeam:     away,
		StartAt:      obs.StartAt,
		Status:       observedStatus(obs.Status, models.MatchScheduled),
		LastSyncedAt: &now,
	}
	if obs.ExternalID != "" {
		extID := obs.ExternalID
		m.ExternalID = &extID
	}
	if obs.Decided() {
		homeSets, awaySets := *obs.HomeSets, *obs.AwaySets
		m.HomeSets = &homeSets
		m.AwaySets = &awaySets
		m.ScoresJSON = models.EncodeSetScores(obs.SetScores)
	}
	// A match first observed past kickoff can never accept predictions.
	if m.Status != models.MatchScheduled {
		m.IsLocked = true
		lockedAt := now
		m.LockedAt = &lockedAt
	}
	if err := r.Matches.Create(m); err != nil {
		return err
	}
	res.Created++
	return nil
}

func (r *Reconciler) updateFromObservation(match *models.Match, obs *models.MatchObservation, now time.Time, res *SyncResult) error {
	wasFinished := match.Status == models.MatchFinished
	changed := false

	if match.ExternalID == nil && obs.ExternalID != "" {
		extID := obs.ExternalID
		match.ExternalID = &extID
		changed = true
	}

	// Never let a stale observation downgrade a finished result.
	status := observedStatus(obs.Status, match.Status)
	if wasFinished && status != models.MatchFinished {
		status = models.MatchFinished
	}
	if status != match.Status {
		match.Status = status
		changed = true
	}

	if obs.Decided() {
		homeSets, awaySets := *obs.HomeSets, *obs.AwaySets
		if match.HomeSets == nil || *match.HomeSets != homeSets || match.AwaySets == nil || *match.AwaySets != awaySets {
			match.HomeSets = &homeSets
			match.AwaySets = &awaySets
			changed = true
		}
		if scores := models.EncodeSetScores(obs.SetScores); scores != "" && scores != match.ScoresJSON {
			match.ScoresJSON = scores
			changed = true
		}
	}

	if !changed {
		return nil
	}

	match.LastSyncedAt = &now
	if err := r.Matches.Save(match); err != nil {
		return err
	}
	res.Updated++

	// FINISHED edge: score right away so dependent flows see points without
	// waiting for the periodic sweep. Best effort — a scoring failure must not
	// fail the reconciliation write that already happened.
	if !wasFinished && match.Status == models.MatchFinished && match.Decided() {
		if _, err := r.Scorer.ScoreMatch(match); err != nil {
			log.Printf("[Reconciler] immediate scoring failed for match %s: %v", match.ID, err)
		}
	}
	return nil
}

// observedStatus maps a reported status onto the known lifecycle, falling
// back when the source reports something unrecognized.
func observedStatus(status, fallback string) string {
	switch status {
	case models.MatchScheduled, models.MatchInProgress, models.MatchFinished, models.MatchCanceled:
		return status
	default:
		return fallback
	}
}
