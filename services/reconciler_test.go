package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"volley-predict-system/models"
)

var reconcileNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestReconciler(obs []models.MatchObservation) (*Reconciler, *fakeMatchStore, *fakePredictionStore) {
	matches := newFakeMatchStore()
	preds := newFakePredictionStore()
	matches.preds = preds
	producer := &fakeProducer{bySource: map[string][]models.MatchObservation{
		"https://example.org/league": obs,
	}}
	return NewReconciler(matches, NewScoringService(preds), producer), matches, preds
}

func testGroup() *models.Group {
	return &models.Group{ID: "g1", Name: "Test League", SourceURL: "https://example.org/league"}
}

func TestReconcileGroupCreatesNewMatch(t *testing.T) {
	kickoff := reconcileNow.Add(48 * time.Hour)
	r, matches, _ := newTestReconciler([]models.MatchObservation{
		{ExternalID: "ext-1", HomeTeam: "  dinamo   ZAGREB ", AwayTeam: "Münster", StartAt: kickoff, Status: models.MatchScheduled},
	})

	res, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow)
	if err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	if res.Created != 1 || res.Updated != 0 {
		t.Fatalf("result = %+v, want 1 created, 0 updated", res)
	}

	m, err := matches.ByExternalID("g1", "ext-1")
	if err != nil || m == nil {
		t.Fatalf("created match not found by external id: %v", err)
	}
	if m.HomeTeam != "Dinamo Zagreb" || m.AwayTeam != "Munster" {
		t.Errorf("team names not normalized: %q vs %q", m.HomeTeam, m.AwayTeam)
	}
	if m.IsLocked {
		t.Error("a scheduled future match must not be created locked")
	}
}

func TestReconcileGroupLocksMatchObservedPastKickoff(t *testing.T) {
	r, matches, _ := newTestReconciler([]models.MatchObservation{
		{ExternalID: "ext-1", HomeTeam: "A", AwayTeam: "B", StartAt: reconcileNow.Add(-time.Hour), Status: models.MatchInProgress},
	})

	if _, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow); err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	m, _ := matches.ByExternalID("g1", "ext-1")
	if m == nil || !m.IsLocked || m.LockedAt == nil {
		t.Fatal("match first observed in play must be created with the lock pinned")
	}
}

func TestReconcileGroupIdempotentRerun(t *testing.T) {
	kickoff := reconcileNow.Add(48 * time.Hour)
	obs := []models.MatchObservation{
		{ExternalID: "ext-1", HomeTeam: "A", AwayTeam: "B", StartAt: kickoff, Status: models.MatchScheduled},
	}
	r, _, _ := newTestReconciler(obs)

	if _, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow); err != nil {
		t.Fatalf("first run: %v", err)
	}
	res, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Created != 0 || res.Updated != 0 {
		t.Errorf("identical rerun = %+v, want zero created and updated", res)
	}
}

func TestReconcileGroupTeamPairWindow(t *testing.T) {
	kickoff := reconcileNow.Add(48 * time.Hour)
	r, matches, _ := newTestReconciler(nil)

	// Stored match without an external id (created by hand).
	seed := &models.Match{
		ID: "m1", GroupID: "g1",
		HomeTeam: "A", AwayTeam: "B",
		StartAt: kickoff, Status: models.MatchScheduled,
	}
	if err := matches.Create(seed); err != nil {
		t.Fatal(err)
	}

	// 90 minutes of drift: same match, external id gets backfilled.
	r.Producer.(*fakeProducer).bySource["https://example.org/league"] = []models.MatchObservation{
		{ExternalID: "ext-1", HomeTeam: "A", AwayTeam: "B", StartAt: kickoff.Add(90 * time.Minute), Status: models.MatchScheduled},
	}
	res, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow)
	if err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("result = %+v, want 0 created, 1 updated", res)
	}
	m, _ := matches.ByID("m1")
	if m.ExternalID == nil || *m.ExternalID != "ext-1" {
		t.Error("external id was not backfilled onto the matched row")
	}

	// 3 hours of drift with a fresh team pair round: a different match.
	r.Producer.(*fakeProducer).bySource["https://example.org/league"] = []models.MatchObservation{
		{HomeTeam: "A", AwayTeam: "B", StartAt: kickoff.Add(72 * time.Hour), Status: models.MatchScheduled},
	}
	res, err = r.ReconcileGroup(context.Background(), testGroup(), reconcileNow)
	if err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("result = %+v, want a new match outside the window", res)
	}
}

func TestReconcileGroupNeverDowngradesFinished(t *testing.T) {
	r, matches, _ := newTestReconciler([]models.MatchObservation{
		{ExternalID: "ext-1", HomeTeam: "A", AwayTeam: "B", StartAt: reconcileNow.Add(-24 * time.Hour), Status: models.MatchInProgress},
	})

	ext := "ext-1"
	home, away := 3, 1
	seed := &models.Match{
		ID: "m1", GroupID: "g1", ExternalID: &ext,
		HomeTeam: "A", AwayTeam: "B",
		StartAt: reconcileNow.Add(-24 * time.Hour),
		Status:  models.MatchFinished,
		HomeSets: &home, AwaySets: &away,
		IsLocked: true,
	}
	if err := matches.Create(seed); err != nil {
		t.Fatal(err)
	}

	if _, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow); err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	m, _ := matches.ByID("m1")
	if m.Status != models.MatchFinished {
		t.Errorf("status = %s, a stale observation must not downgrade FINISHED", m.Status)
	}
}

func TestReconcileGroupScoresOnFinishedEdge(t *testing.T) {
	kickoff := reconcileNow.Add(-3 * time.Hour)
	r, matches, preds := newTestReconciler([]models.MatchObservation{
		{
			ExternalID: "ext-1", HomeTeam: "A", AwayTeam: "B", StartAt: kickoff,
			Status: models.MatchFinished, HomeSets: intPtr(3), AwaySets: intPtr(0),
		},
	})

	ext := "ext-1"
	seed := &models.Match{
		ID: "m1", GroupID: "g1", ExternalID: &ext,
		HomeTeam: "A", AwayTeam: "B", StartAt: kickoff,
		Status: models.MatchInProgress, IsLocked: true,
	}
	if err := matches.Create(seed); err != nil {
		t.Fatal(err)
	}
	preds.add(models.Prediction{ID: "p1", MatchID: "m1", HomeSets: 3, AwaySets: 0})

	res, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow)
	if err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("result = %+v, want 1 updated", res)
	}

	p := preds.preds["p1"]
	if p.Points == nil || *p.Points != 3 {
		t.Errorf("points = %v, want 3 awarded immediately on the FINISHED edge", p.Points)
	}
	m, _ := matches.ByID("m1")
	if m.LastSyncedAt == nil {
		t.Error("LastSyncedAt must be stamped on change")
	}
}

func TestReconcileGroupSourceUnavailable(t *testing.T) {
	r, _, _ := newTestReconciler(nil)
	group := testGroup()
	group.SourceURL = "https://example.org/unreachable"

	_, err := r.ReconcileGroup(context.Background(), group, reconcileNow)
	var srcErr *SourceUnavailableError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected *SourceUnavailableError, got %v", err)
	}
	if srcErr.GroupID != "g1" {
		t.Errorf("GroupID = %s, want g1", srcErr.GroupID)
	}
}

func TestReconcileGroupSkipsNamelessObservations(t *testing.T) {
	r, _, _ := newTestReconciler([]models.MatchObservation{
		{ExternalID: "ext-1", HomeTeam: "", AwayTeam: "B", StartAt: reconcileNow},
		{ExternalID: "ext-2", HomeTeam: "A", AwayTeam: "B", StartAt: reconcileNow.Add(48 * time.Hour), Status: models.MatchScheduled},
	})

	res, err := r.ReconcileGroup(context.Background(), testGroup(), reconcileNow)
	if err != nil {
		t.Fatalf("ReconcileGroup: %v", err)
	}
	if res.Created != 1 {
		t.Errorf("result = %+v, want only the well-formed observation applied", res)
	}
}
