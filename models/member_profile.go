package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberProfile is a local snapshot of user data needed for group listings
// and standings. Owned and managed solely by this service's member sync
// worker; populated from the Profile Service.
type MemberProfile struct {
	ID             string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string     `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username       string     `gorm:"index;not null" json:"username"`
	AvatarURL      *string    `json:"avatar_url,omitempty"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
