package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"volley-predict-system/models"
	"volley-predict-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GroupService manages prediction groups: creation, joining by slug, source
// configuration, members and standings.
type GroupService struct {
	DB         *gorm.DB
	Reconciler *Reconciler
	Now        func() time.Time
}

func NewGroupService(db *gorm.DB, reconciler *Reconciler) *GroupService {
	return &GroupService{DB: db, Reconciler: reconciler, Now: time.Now}
}

// CreateGroup creates a group with a unique join slug and an optional emblem
// uploaded to R2. The creator becomes the first member, as admin.
func (s *GroupService) CreateGroup(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(401).JSON(fiber.Map{"error": "missing user context"})
	}

	name := c.FormValue("name")
	sourceURL := c.FormValue("source_url")
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	groupSlug := slug.Make(name)
	var count int64
	s.DB.Model(&models.Group{}).Where("slug LIKE ?", groupSlug+"%").Count(&count)
	if count > 0 {
		groupSlug = fmt.Sprintf("%s-%d", groupSlug, count+1)
	}

	var emblemURL string
	if emblem, err := c.FormFile("emblem"); err == nil && emblem.Size > 0 {
		ext := filepath.Ext(emblem.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "groups/emblems/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(emblem, key)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload emblem"})
		}
		emblemURL = url
	}

	group := models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      groupSlug,
		EmblemURL: emblemURL,
		SourceURL: sourceURL,
		OwnerID:   userID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMember{
			ID:      uuid.NewString(),
			GroupID: group.ID,
			UserID:  userID,
			Role:    "admin",
		}).Error
	})
	if err != nil {
		log.Printf("ERROR creating group: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create group"})
	}
	return c.Status(201).JSON(group)
}

// JoinGroup adds the caller to the group behind a join slug.
func (s *GroupService) JoinGroup(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	joinSlug := c.Params("slug")

	var group models.Group
	if err := s.DB.First(&group, "slug = ?", joinSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "group not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var existing models.GroupMember
	if err := s.DB.Where("group_id = ? AND user_id = ?", group.ID, userID).First(&existing).Error; err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "already a member", "group": group})
	}

	member := models.GroupMember{
		ID:      uuid.NewString(),
		GroupID: group.ID,
		UserID:  userID,
		Role:    "member",
	}
	if err := s.DB.Create(&member).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to join group"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "joined group", "group": group})
}

// GetGroup returns one group with its member count.
func (s *GroupService) GetGroup(c *fiber.Ctx) error {
	var group models.Group
	if err := s.DB.First(&group, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "group not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	var members int64
	s.DB.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&members)
	return c.JSON(fiber.Map{"group": group, "member_count": members})
}

// GetGroupBySlug resolves a join slug so an invite link can show the group
// name before the visitor signs in.
func (s *GroupService) GetGroupBySlug(c *fiber.Ctx) error {
	var group models.Group
	if err := s.DB.First(&group, "slug = ?", c.Params("slug")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "group not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	var members int64
	s.DB.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&members)
	return c.JSON(fiber.Map{
		"id":           group.ID,
		"name":         group.Name,
		"slug":         group.Slug,
		"emblem_url":   group.EmblemURL,
		"member_count": members,
	})
}

// ListMyGroups returns every group the caller belongs to.
func (s *GroupService) ListMyGroups(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var groups []models.Group
	err := s.DB.
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		log.Printf("ERROR fetching groups for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch groups"})
	}
	return c.JSON(groups)
}

// ListMembers returns a group's members joined with their mirrored profiles.
func (s *GroupService) ListMembers(c *fiber.Ctx) error {
	groupID := c.Params("id")
	type MemberRow struct {
		UserID    string    `json:"user_id"`
		Role      string    `json:"role"`
		JoinedAt  time.Time `json:"joined_at"`
		Username  string    `json:"username"`
		AvatarURL *string   `json:"avatar_url,omitempty"`
	}
	var members []MemberRow
	query := `
        SELECT
            gm.user_id,
            gm.role,
            gm.joined_at,
            COALESCE(mp.username, '') as username,
            mp.avatar_url
        FROM group_members gm
        LEFT JOIN member_profiles mp ON mp.external_user_id = gm.user_id AND mp.deleted_at IS NULL
        WHERE gm.group_id = ?
        ORDER BY gm.joined_at ASC
    `
	if err := s.DB.Raw(query, groupID).Scan(&members).Error; err != nil {
		log.Printf("ERROR fetching members for group %s: %v", groupID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch members"})
	}
	return c.JSON(members)
}

// UpdateSource sets or clears the competition page the group syncs from.
func (s *GroupService) UpdateSource(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	type Req struct {
		SourceURL string `json:"source_url"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var group models.Group
	if err := s.DB.First(&group, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "group not found"})
	}
	if group.OwnerID != userID {
		return c.Status(403).JSON(fiber.Map{"error": "only the group owner can change the source"})
	}
	if err := s.DB.Model(&group).Update("source_url", req.SourceURL).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(group)
}

// SyncNow runs reconciliation for one group on demand instead of waiting for
// the next sync sweep.
func (s *GroupService) SyncNow(c *fiber.Ctx) error {
	var group models.Group
	if err := s.DB.First(&group, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "group not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if group.SourceURL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "group has no source configured"})
	}

	res, err := s.Reconciler.ReconcileGroup(c.Context(), &group, s.Now())
	if err != nil {
		var srcErr *SourceUnavailableError
		if errors.As(err, &srcErr) {
			return c.Status(502).JSON(fiber.Map{"error": "source unavailable", "details": srcErr.Error()})
		}
		log.Printf("ERROR syncing group %s: %v", group.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "sync failed"})
	}
	return c.JSON(res)
}

// GetStandings returns the group's denormalized standings, usernames joined
// from the profile mirror.
func (s *GroupService) GetStandings(c *fiber.Ctx) error {
	groupID := c.Params("id")
	type StandingRow struct {
		UserID            string    `json:"user_id"`
		Username          string    `json:"username"`
		TotalPoints       int64     `json:"total_points"`
		PredictionsScored int64     `json:"predictions_scored"`
		Rank              int       `json:"rank"`
		ComputedAt        time.Time `json:"computed_at"`
	}
	var rows []StandingRow
	query := `
        SELECT
            gs.user_id,
            COALESCE(mp.username, '') as username,
            gs.total_points,
            gs.predictions_scored,
            gs.rank,
            gs.computed_at
        FROM group_standings gs
        LEFT JOIN member_profiles mp ON mp.external_user_id = gs.user_id AND mp.deleted_at IS NULL
        WHERE gs.group_id = ?
        ORDER BY gs.rank ASC
    `
	if err := s.DB.Raw(query, groupID).Scan(&rows).Error; err != nil {
		log.Printf("ERROR fetching standings for group %s: %v", groupID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch standings"})
	}
	return c.JSON(rows)
}
