package services

import (
	"errors"
	"log"
	"time"

	"volley-predict-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchService exposes match administration: listing, manual creation,
// manual result entry and rescoring. Matches are only ever soft-deleted so
// scored predictions keep resolving.
type MatchService struct {
	DB     *gorm.DB
	Scorer *ScoringService
	Now    func() time.Time
}

func NewMatchService(db *gorm.DB, scorer *ScoringService) *MatchService {
	return &MatchService{DB: db, Scorer: scorer, Now: time.Now}
}

// ListGroupMatches returns a group's matches, optionally filtered by status,
// with the lock state derived fresh for each.
func (s *MatchService) ListGroupMatches(c *fiber.Ctx) error {
	groupID := c.Params("id")
	status := c.Query("status")

	query := s.DB.Where("group_id = ?", groupID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var matches []models.Match
	if err := query.Order("start_at ASC").Find(&matches).Error; err != nil {
		log.Printf("ERROR fetching matches for group %s: %v", groupID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}

	now := s.Now()
	out := make([]fiber.Map, 0, len(matches))
	for i := range matches {
		out = append(out, matchResponse(&matches[i], now))
	}
	return c.JSON(out)
}

// GetMatch returns one match with derived lock state.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("match_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(matchResponse(&match, s.Now()))
}

// CreateMatch creates a match by hand, for groups without a configured
// source. Team names go through the same normalization the reconciler uses,
// so a later sync can still de-duplicate against it.
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	type Req struct {
		HomeTeam string `json:"home_team"`
		AwayTeam string `json:"away_team"`
		StartAt  string `json:"start_at"` // RFC3339
	}
	groupID := c.Params("id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.HomeTeam == "" || req.AwayTeam == "" || req.StartAt == "" {
		return c.Status(400).JSON(fiber.Map{"error": "home_team, away_team and start_at are required"})
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid start_at (use RFC3339)"})
	}
	if err := s.DB.First(&models.Group{}, "id = ?", groupID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "group not found"})
	}

	match := models.Match{
		ID:       uuid.NewString(),
		GroupID:  groupID,
		HomeTeam: NormalizeTeamName(req.HomeTeam),
		AwayTeam: NormalizeTeamName(req.AwayTeam),
		StartAt:  startAt,
		Status:   models.MatchScheduled,
	}
	if err := s.DB.Create(&match).Error; err != nil {
		log.Printf("ERROR creating match: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create match"})
	}
	return c.Status(201).JSON(matchResponse(&match, s.Now()))
}

// EnterResult records a final result by hand and scores the match
// immediately. The detailed sets must validate against the summary exactly
// like a prediction's would.
func (s *MatchService) EnterResult(c *fiber.Ctx) error {
	type Req struct {
		HomeSets  int               `json:"home_sets"`
		AwaySets  int               `json:"away_sets"`
		SetScores []models.SetScore `json:"set_scores,omitempty"`
	}
	matchID := c.Params("match_id")
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

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

	var match models.Match
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	now := s.Now()
	match.HomeSets = &req.HomeSets
	match.AwaySets = &req.AwaySets
	match.ScoresJSON = models.EncodeSetScores(req.SetScores)
	match.Status = models.MatchFinished
	match.IsLocked = true
	if match.LockedAt == nil {
		match.LockedAt = &now
	}
	if err := s.DB.Save(&match).Error; err != nil {
		log.Printf("ERROR saving result for match %s: %v", matchID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to save result"})
	}

	written, err := s.Scorer.ScoreMatch(&match)
	if err != nil {
		// Result is saved; the scoring sweep will pick the predictions up.
		log.Printf("ERROR scoring match %s after result entry: %v", matchID, err)
	}
	return c.JSON(fiber.Map{
		"match":          matchResponse(&match, now),
		"awards_written": written,
	})
}

// RescoreMatch recomputes points for every prediction of a finished match,
// overwriting previous awards. Used after a result correction.
func (s *MatchService) RescoreMatch(c *fiber.Ctx) error {
	var match models.Match
	if err := s.DB.First(&match, "id = ?", c.Params("match_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if match.Status != models.MatchFinished || !match.Decided() {
		return c.Status(400).JSON(fiber.Map{"error": "match has no final result to score against"})
	}
	written, err := s.Scorer.ScoreMatch(&match)
	if err != nil {
		log.Printf("ERROR rescoring match %s: %v", match.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "rescore failed"})
	}
	return c.JSON(fiber.Map{"message": "match rescored", "awards_written": written})
}

// DeleteMatch soft-deletes a match. Physical deletion would orphan scored
// predictions, so it is never offered.
func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	result := s.DB.Delete(&models.Match{}, "id = ?", c.Params("match_id"))
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "match not found"})
	}
	return c.JSON(fiber.Map{"message": "match deleted"})
}

func matchResponse(m *models.Match, now time.Time) fiber.Map {
	return fiber.Map{
		"id":             m.ID,
		"group_id":       m.GroupID,
		"external_id":    m.ExternalID,
		"home_team":      m.HomeTeam,
		"away_team":      m.AwayTeam,
		"start_at":       m.StartAt,
		"status":         m.Status,
		"home_sets":      m.HomeSets,
		"away_sets":      m.AwaySets,
		"set_scores":     m.SetScores(),
		"is_locked":      IsLocked(m, now),
		"locks_at":       LocksAt(m),
		"last_synced_at": m.LastSyncedAt,
	}
}
