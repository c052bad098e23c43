package services

import (
	"fmt"

	"volley-predict-system/models"
)

// ScoringService applies ComputePoints to every prediction of a finished
// match. Writes are compute-and-overwrite, so the reconciler's immediate
// trigger and the periodic scoring sweep can both hit the same match without
// double-applying points.
type ScoringService struct {
	Predictions PredictionStore
}

func NewScoringService(predictions PredictionStore) *ScoringService {
	return &ScoringService{Predictions: predictions}
}

// ScoreMatch scores all predictions for a finished match, soft-deleted ones
// included. Returns how many awards were written. Calling it with a match
// that is not finished with a complete summary is a caller bug.
func (s *ScoringService) ScoreMatch(m *models.Match) (int, error) {
	if m.Status != models.MatchFinished || !m.Decided() {
		return 0, fmt.Errorf("match %s is not finished with a complete summary score", m.ID)
	}

	preds, err := s.Predictions.ForMatch(m.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load predictions for match %s: %w", m.ID, err)
	}

	actualSets := m.SetScores()
	written := 0
	for i := range preds {
		p := &preds[i]
		pts := ComputePoints(*m.HomeSets, *m.AwaySets, actualSets, p.HomeSets, p.AwaySets, p.SetScores(), p.IsRisky)
		if p.Points != nil && *p.Points == pts {
			continue
		}
		if err := s.Predictions.SetPoints(p.ID, pts); err != nil {
			return written, fmt.Errorf("failed to write points for prediction %s: %w", p.ID, err)
		}
		written++
	}
	return written, nil
}
