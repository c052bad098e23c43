package services

import (
	"errors"
	"log"
	"time"

	"volley-predict-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PredictionService handles the submission-time flow: lock gate, set-score
// validation, risky cooldown, then an upsert on (user, match).
type PredictionService struct {
	DB        *gorm.DB
	Cooldowns *CooldownService
	Now       func() time.Time
}

func NewPredictionService(db *gorm.DB, cooldowns *CooldownService) *PredictionService {
	return &PredictionService{DB: db, Cooldowns: cooldowns, Now: time.Now}
}

type predictionRequest struct {
	HomeSets  int               `json:"home_sets"`
	AwaySets  int               `json:"away_sets"`
	SetScores []models.SetScore `json:"set_scores,omitempty"`
	IsRisky   bool              `json:"is_risky"`
}

// SubmitPrediction creates or replaces the caller's prediction for a match.
// Concurrent submissions by the same user resolve via the unique
// (user, match) upsert, last write wins.
func (s *PredictionService) SubmitPrediction(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}
	groupID := c.Params("id")
	matchID := c.Params("match_id")

	var req predictionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if err := s.requireMembership(groupID, userID); err != nil {
		return c.Status(403).JSON(fiber.Map{"error": "not a member of this group"})
	}

	var match models.Match
	if err := s.DB.First(&match, "id = ? AND group_id = ?", matchID, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		log.Printf("ERROR fetching match %s: %v", matchID, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	now := s.Now()
	if IsLocked(&match, now) {
		lerr := &LockedError{MatchID: match.ID, LocksAt: LocksAt(&match)}
		return c.Status(403).JSON(fiber.Map{
			"error":     lerr.Error(),
			"locked_at": lerr.LocksAt,
		})
	}

	// Per-set detail is optional; the summary alone is not.
	var verr error
	if len(req.SetScores) > 0 {
		verr = ValidateSetScores(req.HomeSets, req.AwaySets, req.SetScores)
	} else {
		verr = ValidateSummary(req.HomeSets, req.AwaySets)
	}
	var ve *ValidationError
	if errors.As(verr, &ve) {
		return c.Status(400).JSON(fiber.Map{"error": ve.Reason, "set_index": ve.SetIndex})
	}

	// Risky gate applies when the submission turns risky mode on, not when an
	// already-risky prediction is edited.
	var existing models.Prediction
	hasExisting := s.DB.Where("user_id = ? AND match_id = ?", userID, matchID).First(&existing).Error == nil
	invokesRisky := req.IsRisky && !(hasExisting && existing.IsRisky)
	if invokesRisky {
		allowed, next, err := s.Cooldowns.CanUseRisky(userID, groupID, now)
		if err != nil {
			log.Printf("ERROR checking risky cooldown for user %s: %v", userID, err)
			return c.Status(500).JSON(fiber.Map{"error": "DB error"})
		}
		if !allowed {
			cerr := &CooldownError{NextAvailable: *next}
			return c.Status(429).JSON(fiber.Map{
				"error":          cerr.Error(),
				"next_available": cerr.NextAvailable,
			})
		}
	}

	pred := models.Prediction{
		ID:         uuid.NewString(),
		UserID:     userID,
		GroupID:    groupID,
		MatchID:    matchID,
		HomeSets:   req.HomeSets,
		AwaySets:   req.AwaySets,
		ScoresJSON: models.EncodeSetScores(req.SetScores),
		IsRisky:    req.IsRisky,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"home_sets", "away_sets", "scores_json", "is_risky", "updated_at",
		}),
	}).Create(&pred).Error; err != nil {
		log.Printf("ERROR upserting prediction for user %s match %s: %v", userID, matchID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save prediction"})
	}

	if invokesRisky {
		if err := s.Cooldowns.MarkUsed(userID, groupID, now); err != nil {
			log.Printf("ERROR recording risky use for user %s group %s: %v", userID, groupID, err)
		}
	}

	// Re-fetch: on conflict the stored row keeps its original id.
	s.DB.Where("user_id = ? AND match_id = ?", userID, matchID).First(&pred)
	return c.Status(201).JSON(pred)
}

// GetMyPrediction returns the caller's prediction for a match.
func (s *PredictionService) GetMyPrediction(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matchID := c.Params("match_id")

	var pred models.Prediction
	if err := s.DB.Where("user_id = ? AND match_id = ?", userID, matchID).First(&pred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "no prediction for this match"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(predictionResponse(&pred))
}

// ListMatchPredictions returns everyone's predictions for a match. Hidden
// until the match locks, so members cannot copy each other.
func (s *PredictionService) ListMatchPredictions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	groupID := c.Params("id")
	matchID := c.Params("match_id")

	if err := s.requireMembership(groupID, userID); err != nil {
		return c.Status(403).JSON(fiber.Map{"error": "not a member of this group"})
	}

	var match models.Match
	if err := s.DB.First(&match, "id = ? AND group_id = ?", matchID, groupID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	if !IsLocked(&match, s.Now()) {
		return c.Status(403).JSON(fiber.Map{"error": "predictions are hidden until the match locks"})
	}

	var preds []models.Prediction
	if err := s.DB.Where("match_id = ?", matchID).Order("created_at ASC").Find(&preds).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	out := make([]fiber.Map, 0, len(preds))
	for i := range preds {
		out = append(out, predictionResponse(&preds[i]))
	}
	return c.JSON(out)
}

// DeletePrediction removes the caller's prediction. On a finished match the
// row is soft-deleted so its points keep counting toward global rankings; on
// an undecided match it is removed outright.
func (s *PredictionService) DeletePrediction(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	matchID := c.Params("match_id")

	var pred models.Prediction
	if err := s.DB.Where("user_id = ? AND match_id = ?", userID, matchID).First(&pred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "no prediction for this match"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	tx := s.DB
	if match.Status != models.MatchFinished {
		tx = tx.Unscoped()
	}
	if err := tx.Delete(&pred).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}
	return c.JSON(fiber.Map{"message": "prediction deleted"})
}

func (s *PredictionService) requireMembership(groupID, userID string) error {
	var member models.GroupMember
	return s.DB.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
}

func predictionResponse(p *models.Prediction) fiber.Map {
	return fiber.Map{
		"id":         p.ID,
		"user_id":    p.UserID,
		"match_id":   p.MatchID,
		"home_sets":  p.HomeSets,
		"away_sets":  p.AwaySets,
		"set_scores": p.SetScores(),
		"is_risky":   p.IsRisky,
		"points":     p.Points,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}
