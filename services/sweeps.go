package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SweepService drives the three periodic lifecycle duties. Each sweep is
// independently retryable and isolates per-unit failures; none blocks the
// others. Lock and scoring sweeps are disjoint by status (SCHEDULED vs
// FINISHED), and every scoring write overwrites, so overlapping runs stay
// correct.
type SweepService struct {
	Matches    MatchStore
	Groups     GroupStore
	Reconciler *Reconciler
	Scorer     *ScoringService
	Now        func() time.Time
}

func NewSweepService(matches MatchStore, groups GroupStore, reconciler *Reconciler, scorer *ScoringService) *SweepService {
	return &SweepService{
		Matches:    matches,
		Groups:     groups,
		Reconciler: reconciler,
		Scorer:     scorer,
		Now:        time.Now,
	}
}

// RunLockSweep transitions every due SCHEDULED match to IN_PROGRESS and pins
// its lock, in one batch. Re-locking an already-locked match is a no-op.
func (s *SweepService) RunLockSweep(now time.Time) (int64, error) {
	locked, err := s.Matches.LockDue(now)
	if err != nil {
		return 0, err
	}
	if locked > 0 {
		log.Printf("[LockSweep] locked %d match(es) at kickoff", locked)
	}
	return locked, nil
}

// RunSyncSweep reconciles every group with a configured source. Per-group
// failures are logged and counted, never propagated — one broken competition
// page must not stall the rest.
func (s *SweepService) RunSyncSweep(ctx context.Context, now time.Time) (synced, failed int) {
	groups, err := s.Groups.WithSource()
	if err != nil {
		log.Printf("[SyncSweep] failed to list groups: %v", err)
		return 0, 0
	}
	for i := range groups {
		group := &groups[i]
		res, err := s.Reconciler.ReconcileGroup(ctx, group, now)
		if err != nil {
			failed++
			log.Printf("[SyncSweep] group %s (%s): %v", group.Name, group.ID, err)
			continue
		}
		synced++
		if res.Created > 0 || res.Updated > 0 {
			log.Printf("[SyncSweep] group %s: %d created, %d updated", group.Name, res.Created, res.Updated)
		}
	}
	return synced, failed
}

// RunScoringSweep scores every finished match that still has unscored
// predictions. Per-match failures are isolated.
func (s *SweepService) RunScoringSweep(now time.Time) (int, error) {
	matches, err := s.Matches.FinishedUnscored()
	if err != nil {
		return 0, err
	}
	scored := 0
	for i := range matches {
		m := &matches[i]
		if _, err := s.Scorer.ScoreMatch(m); err != nil {
			log.Printf("[ScoringSweep] match %s: %v", m.ID, err)
			continue
		}
		scored++
	}
	if scored > 0 {
		log.Printf("[ScoringSweep] scored predictions for %d match(es)", scored)
	}
	return scored, nil
}

// StartLifecycleScheduler wires the sweeps onto periodic jobs. Sweeps that
// overrun their interval are allowed to finish; writes are idempotent.
func (s *SweepService) StartLifecycleScheduler(ctx context.Context) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if _, err := s.RunLockSweep(s.Now()); err != nil {
				log.Printf("[LockSweep] error: %v", err)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			s.RunSyncSweep(ctx, s.Now())
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if _, err := s.RunScoringSweep(s.Now()); err != nil {
				log.Printf("[ScoringSweep] error: %v", err)
			}
		}),
	)
}
