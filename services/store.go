package services

import (
	"context"
	"time"

	"volley-predict-system/models"
)

// Narrow store interfaces consumed by the reconciler, the sweeps and the
// cooldown tracker. Production implementations are the GORM repos below in
// gorm_store.go; tests substitute in-memory fakes.

// MatchStore is the authoritative match set, scoped per group.
type MatchStore interface {
	ByID(id string) (*models.Match, error)
	// ByExternalID returns (nil, nil) when no stored match carries the id.
	ByExternalID(groupID, externalID string) (*models.Match, error)
	// ByTeamsNear is the windowed fallback lookup: same normalized team pair,
	// start time within ±window of center. Returns (nil, nil) when none.
	ByTeamsNear(groupID, homeTeam, awayTeam string, center time.Time, window time.Duration) (*models.Match, error)
	Create(m *models.Match) error
	Save(m *models.Match) error
	// LockDue transitions every SCHEDULED match with start_at <= now to
	// IN_PROGRESS with the lock pinned, in one batch. Idempotent.
	LockDue(now time.Time) (int64, error)
	// FinishedUnscored lists FINISHED matches with a complete summary that
	// still have at least one prediction lacking points (soft-deleted
	// predictions included).
	FinishedUnscored() ([]models.Match, error)
}

// PredictionStore covers what scoring needs; submission CRUD talks to GORM
// directly in PredictionService.
type PredictionStore interface {
	// ForMatch returns all predictions for a match, soft-deleted included so
	// historical points survive for global rankings.
	ForMatch(matchID string) ([]models.Prediction, error)
	// SetPoints overwrites the awarded points. Never increments.
	SetPoints(predictionID string, points int) error
}

// CooldownStore persists the per-(user, group) risky usage record.
type CooldownStore interface {
	// Get returns (nil, nil) when the user never used risky mode in the group.
	Get(userID, groupID string) (*models.RiskyCooldown, error)
	Upsert(userID, groupID string, usedAt time.Time) error
}

// GroupStore lists groups eligible for the sync sweep.
type GroupStore interface {
	WithSource() ([]models.Group, error)
}

// ObservationProducer is the black-box scraping collaborator: it turns a
// competition page into the raw match observations for one sync cycle.
type ObservationProducer interface {
	FetchObservations(ctx context.Context, sourceURL string) ([]models.MatchObservation, error)
}
