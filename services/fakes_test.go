package services

import (
	"context"
	"errors"
	"time"

	"volley-predict-system/models"
)

// In-memory stand-ins for the GORM repos. They copy on write and on read so
// tests observe store state the way a database round-trip would.

type fakeMatchStore struct {
	matches map[string]*models.Match
	preds   *fakePredictionStore
	saveErr error
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{matches: make(map[string]*models.Match)}
}

func (s *fakeMatchStore) ByID(id string) (*models.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMatchStore) ByExternalID(groupID, externalID string) (*models.Match, error) {
	for _, m := range s.matches {
		if m.GroupID == groupID && m.ExternalID != nil && *m.ExternalID == externalID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeMatchStore) ByTeamsNear(groupID, homeTeam, awayTeam string, center time.Time, window time.Duration) (*models.Match, error) {
	for _, m := range s.matches {
		if m.GroupID != groupID || m.HomeTeam != homeTeam || m.AwayTeam != awayTeam {
			continue
		}
		diff := m.StartAt.Sub(center)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeMatchStore) Create(m *models.Match) error {
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *fakeMatchStore) Save(m *models.Match) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *fakeMatchStore) LockDue(now time.Time) (int64, error) {
	var n int64
	for _, m := range s.matches {
		if m.Status == models.MatchScheduled && !m.StartAt.After(now) {
			m.Status = models.MatchInProgress
			m.IsLocked = true
			lockedAt := now
			m.LockedAt = &lockedAt
			n++
		}
	}
	return n, nil
}

func (s *fakeMatchStore) FinishedUnscored() ([]models.Match, error) {
	var out []models.Match
	for _, m := range s.matches {
		if m.Status != models.MatchFinished || !m.Decided() {
			continue
		}
		if s.preds == nil {
			continue
		}
		for _, p := range s.preds.preds {
			if p.MatchID == m.ID && p.Points == nil {
				out = append(out, *m)
				break
			}
		}
	}
	return out, nil
}

type fakePredictionStore struct {
	preds  map[string]*models.Prediction
	writes int
	setErr error
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{preds: make(map[string]*models.Prediction)}
}

func (s *fakePredictionStore) add(p models.Prediction) {
	cp := p
	s.preds[p.ID] = &cp
}

func (s *fakePredictionStore) ForMatch(matchID string) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range s.preds {
		if p.MatchID == matchID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePredictionStore) SetPoints(predictionID string, points int) error {
	if s.setErr != nil {
		return s.setErr
	}
	p, ok := s.preds[predictionID]
	if !ok {
		return ErrNotFound
	}
	pts := points
	p.Points = &pts
	s.writes++
	return nil
}

type fakeCooldownStore struct {
	recs map[string]*models.RiskyCooldown
}

func newFakeCooldownStore() *fakeCooldownStore {
	return &fakeCooldownStore{recs: make(map[string]*models.RiskyCooldown)}
}

func (s *fakeCooldownStore) Get(userID, groupID string) (*models.RiskyCooldown, error) {
	rec, ok := s.recs[userID+"/"+groupID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeCooldownStore) Upsert(userID, groupID string, usedAt time.Time) error {
	s.recs[userID+"/"+groupID] = &models.RiskyCooldown{
		UserID: userID, GroupID: groupID, LastUsedAt: usedAt,
	}
	return nil
}

type fakeGroupStore struct {
	groups []models.Group
}

func (s *fakeGroupStore) WithSource() ([]models.Group, error) {
	var out []models.Group
	for _, g := range s.groups {
		if g.SourceURL != "" {
			out = append(out, g)
		}
	}
	return out, nil
}

// fakeProducer serves canned observations per source URL; unknown sources
// fail like an unreachable page.
type fakeProducer struct {
	bySource map[string][]models.MatchObservation
}

func (p *fakeProducer) FetchObservations(_ context.Context, sourceURL string) ([]models.MatchObservation, error) {
	obs, ok := p.bySource[sourceURL]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return obs, nil
}

func intPtr(v int) *int { return &v }
