package services

import "time"

// RiskyCooldownPeriod is how long a user waits between risky predictions in
// the same group. The boundary is inclusive: an attempt exactly 7 days after
// the last use is allowed.
const RiskyCooldownPeriod = 7 * 24 * time.Hour

// CooldownService tracks how often the risky modifier may be invoked per
// (user, group).
type CooldownService struct {
	Store CooldownStore
}

func NewCooldownService(store CooldownStore) *CooldownService {
	return &CooldownService{Store: store}
}

// CanUseRisky reports whether the user may submit a risky prediction in the
// group right now. On denial, nextAvailable carries the exact instant the
// modifier unlocks again, for countdown display.
func (s *CooldownService) CanUseRisky(userID, groupID string, now time.Time) (bool, *time.Time, error) {
	rec, err := s.Store.Get(userID, groupID)
	if err != nil {
		return false, nil, err
	}
	if rec == nil {
		return true, nil, nil
	}
	next := rec.LastUsedAt.Add(RiskyCooldownPeriod)
	if now.Before(next) {
		return false, &next, nil
	}
	return true, nil, nil
}

// MarkUsed records a successful risky submission.
func (s *CooldownService) MarkUsed(userID, groupID string, now time.Time) error {
	return s.Store.Upsert(userID, groupID, now)
}
