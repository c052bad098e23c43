package services

import (
	"errors"
	"time"

	"volley-predict-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORM-backed store implementations.

type MatchRepo struct {
	DB *gorm.DB
}

func NewMatchRepo(db *gorm.DB) *MatchRepo {
	return &MatchRepo{DB: db}
}

func (r *MatchRepo) ByID(id string) (*models.Match, error) {
	var m models.Match
	if err := r.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) ByExternalID(groupID, externalID string) (*models.Match, error) {
	var m models.Match
	err := r.DB.Where("group_id = ? AND external_id = ?", groupID, externalID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) ByTeamsNear(groupID, homeTeam, awayTeam string, center time.Time, window time.Duration) (*models.Match, error) {
	var m models.Match
	err := r.DB.
		Where("group_id = ? AND home_team = ? AND away_team = ?", groupID, homeTeam, awayTeam).
		Where("start_at BETWEEN ? AND ?", center.Add(-window), center.Add(window)).
		Order("start_at ASC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) Create(m *models.Match) error {
	return r.DB.Create(m).Error
}

func (r *MatchRepo) Save(m *models.Match) error {
	return r.DB.Save(m).Error
}

func (r *MatchRepo) LockDue(now time.Time) (int64, error) {
	res := r.DB.Model(&models.Match{}).
		Where("status = ? AND start_at <= ?", models.MatchScheduled, now).
		Updates(map[string]interface{}{
			"status":    models.MatchInProgress,
			"is_locked": true,
			"locked_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *MatchRepo) FinishedUnscored() ([]models.Match, error) {
	unscored := r.DB.Unscoped().Model(&models.Prediction{}).
		Select("match_id").
		Where("points IS NULL")
	var matches []models.Match
	err := r.DB.
		Where("status = ? AND home_sets IS NOT NULL AND away_sets IS NOT NULL", models.MatchFinished).
		Where("id IN (?)", unscored).
		Find(&matches).Error
	return matches, err
}

type PredictionRepo struct {
	DB *gorm.DB
}

func NewPredictionRepo(db *gorm.DB) *PredictionRepo {
	return &PredictionRepo{DB: db}
}

func (r *PredictionRepo) ForMatch(matchID string) ([]models.Prediction, error) {
	var preds []models.Prediction
	err := r.DB.Unscoped().Where("match_id = ?", matchID).Find(&preds).Error
	return preds, err
}

func (r *PredictionRepo) SetPoints(predictionID string, points int) error {
	return r.DB.Unscoped().Model(&models.Prediction{}).
		Where("id = ?", predictionID).
		Update("points", points).Error
}

type CooldownRepo struct {
	DB *gorm.DB
}

func NewCooldownRepo(db *gorm.DB) *CooldownRepo {
	return &CooldownRepo{DB: db}
}

func (r *CooldownRepo) Get(userID, groupID string) (*models.RiskyCooldown, error) {
	var rec models.RiskyCooldown
	err := r.DB.Where("user_id = ? AND group_id = ?", userID, groupID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *CooldownRepo) Upsert(userID, groupID string, usedAt time.Time) error {
	rec := models.RiskyCooldown{
		UserID:     userID,
		GroupID:    groupID,
		LastUsedAt: usedAt,
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_used_at", "updated_at"}),
	}).Create(&rec).Error
}

type GroupRepo struct {
	DB *gorm.DB
}

func NewGroupRepo(db *gorm.DB) *GroupRepo {
	return &GroupRepo{DB: db}
}

func (r *GroupRepo) WithSource() ([]models.Group, error) {
	var groups []models.Group
	err := r.DB.Where("source_url <> ''").Find(&groups).Error
	return groups, err
}
