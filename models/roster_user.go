package models

import (
	"time"

	"gorm.io/gorm"
)

// RosterUser is a local snapshot of member data needed by the rank subsystem.
// Owned and managed solely by this service; populated via sync worker from the
// profile service's user table. Rank state and history key off ExternalUserID.
type RosterUser struct {
	ID             string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex;not null" json:"external_user_id"` // the profile service's UUID
	Username       string    `gorm:"index;not null" json:"username"`
	Email          string    `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	LastSeen *time.Time `json:"last_seen,omitempty"`

	// Soft delete mirrors profile-service deactivation.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
