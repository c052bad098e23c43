package models

import "time"

// Group ties a circle of users to one competition source. SourceURL points at
// the competition page the observation feed scrapes for this group; empty
// means the group's matches are maintained by hand.
type Group struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug"` // join code, e.g. "beach-open-2026"
	EmblemURL string `json:"emblem_url,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	OwnerID   string `gorm:"index;not null" json:"owner_id"`

	Timestamps
}

// GroupMember links a user to a group.
type GroupMember struct {
	ID       string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	GroupID  string    `gorm:"uniqueIndex:idx_member_group_user;not null" json:"group_id"`
	UserID   string    `gorm:"uniqueIndex:idx_member_group_user;not null" json:"user_id"`
	Role     string    `gorm:"type:varchar(16);default:'member'" json:"role"` // member / admin
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// RiskyCooldown records, per (user, group), the last instant the risky
// modifier was used. A new risky prediction is refused until 7 full days
// have elapsed.
type RiskyCooldown struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"uniqueIndex:idx_cooldown_user_group;not null" json:"user_id"`
	GroupID    string    `gorm:"uniqueIndex:idx_cooldown_user_group;not null" json:"group_id"`
	LastUsedAt time.Time `gorm:"not null" json:"last_used_at"`

	Timestamps
}

// GroupStanding is the denormalized per-(group,user) points total, recomputed
// by the standings worker. Never written by request handlers.
type GroupStanding struct {
	ID                string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	GroupID           string    `gorm:"uniqueIndex:idx_standing_group_user;not null" json:"group_id"`
	UserID            string    `gorm:"uniqueIndex:idx_standing_group_user;not null" json:"user_id"`
	TotalPoints       int64     `gorm:"default:0" json:"total_points"`
	PredictionsScored int64     `gorm:"default:0" json:"predictions_scored"`
	Rank              int       `gorm:"default:0" json:"rank"`
	ComputedAt        time.Time `json:"computed_at"`
}
