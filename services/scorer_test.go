package services

import (
	"testing"

	"volley-predict-system/models"
)

func finishedMatch(home, away int, sets []models.SetScore) *models.Match {
	return &models.Match{
		ID:         "m1",
		GroupID:    "g1",
		Status:     models.MatchFinished,
		HomeSets:   &home,
		AwaySets:   &away,
		ScoresJSON: models.EncodeSetScores(sets),
	}
}

func TestScoreMatchRejectsUnfinished(t *testing.T) {
	preds := newFakePredictionStore()
	svc := NewScoringService(preds)

	m := finishedMatch(3, 1, nil)
	m.Status = models.MatchInProgress
	if _, err := svc.ScoreMatch(m); err == nil {
		t.Error("expected error for an unfinished match")
	}

	m = &models.Match{ID: "m1", Status: models.MatchFinished}
	if _, err := svc.ScoreMatch(m); err == nil {
		t.Error("expected error for a finished match without a summary")
	}
}

func TestScoreMatchAwards(t *testing.T) {
	preds := newFakePredictionStore()
	preds.add(models.Prediction{ID: "p-exact", MatchID: "m1", HomeSets: 3, AwaySets: 1})
	preds.add(models.Prediction{ID: "p-winner", MatchID: "m1", HomeSets: 3, AwaySets: 0})
	preds.add(models.Prediction{ID: "p-risky-miss", MatchID: "m1", HomeSets: 0, AwaySets: 3, IsRisky: true})
	preds.add(models.Prediction{ID: "p-other-match", MatchID: "m2", HomeSets: 3, AwaySets: 0})

	svc := NewScoringService(preds)
	written, err := svc.ScoreMatch(finishedMatch(3, 1, nil))
	if err != nil {
		t.Fatalf("ScoreMatch: %v", err)
	}
	if written != 3 {
		t.Errorf("written = %d, want 3", written)
	}

	wants := map[string]int{"p-exact": 3, "p-winner": 1, "p-risky-miss": -2}
	for id, want := range wants {
		p := preds.preds[id]
		if p.Points == nil || *p.Points != want {
			t.Errorf("prediction %s points = %v, want %d", id, p.Points, want)
		}
	}
	if preds.preds["p-other-match"].Points != nil {
		t.Error("prediction on another match must not be scored")
	}
}

func TestScoreMatchIdempotent(t *testing.T) {
	preds := newFakePredictionStore()
	preds.add(models.Prediction{ID: "p1", MatchID: "m1", HomeSets: 3, AwaySets: 1})

	svc := NewScoringService(preds)
	m := finishedMatch(3, 1, nil)

	if _, err := svc.ScoreMatch(m); err != nil {
		t.Fatalf("first ScoreMatch: %v", err)
	}
	written, err := svc.ScoreMatch(m)
	if err != nil {
		t.Fatalf("second ScoreMatch: %v", err)
	}
	if written != 0 {
		t.Errorf("second run written = %d, want 0", written)
	}
	if preds.writes != 1 {
		t.Errorf("total writes = %d, want 1", preds.writes)
	}
}

func TestScoreMatchOverwritesAfterCorrection(t *testing.T) {
	preds := newFakePredictionStore()
	preds.add(models.Prediction{ID: "p1", MatchID: "m1", HomeSets: 3, AwaySets: 1, Points: intPtr(1)})

	// Corrected result now matches the prediction exactly.
	svc := NewScoringService(preds)
	written, err := svc.ScoreMatch(finishedMatch(3, 1, nil))
	if err != nil {
		t.Fatalf("ScoreMatch: %v", err)
	}
	if written != 1 {
		t.Errorf("written = %d, want 1", written)
	}
	if got := *preds.preds["p1"].Points; got != 3 {
		t.Errorf("points = %d, want 3 (overwritten, not incremented)", got)
	}
}
