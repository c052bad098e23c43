package models

// Prediction is one user's forecast for one match, unique per (user, match).
// Submissions upsert on that key, last write wins. Points stay nil until the
// match is scored and are overwritten (never incremented) on rescore.
//
// Deletion rules: a prediction on an undecided match is hard-deleted; once the
// match is finished it is soft-deleted only, so its points keep counting
// toward global rankings.
type Prediction struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string `gorm:"uniqueIndex:idx_prediction_user_match;not null" json:"user_id"`
	GroupID string `gorm:"index;not null" json:"group_id"`
	MatchID string `gorm:"uniqueIndex:idx_prediction_user_match;not null" json:"match_id"`

	HomeSets   int    `gorm:"not null" json:"home_sets"`
	AwaySets   int    `gorm:"not null" json:"away_sets"`
	ScoresJSON string `gorm:"type:text" json:"-"` // optional per-set guesses

	IsRisky bool `gorm:"default:false" json:"is_risky"`

	Points *int `json:"points,omitempty"` // nil until scored

	Timestamps
}

// SetScores decodes the optional per-set guesses.
func (p *Prediction) SetScores() []SetScore {
	return DecodeSetScores(p.ScoresJSON)
}
