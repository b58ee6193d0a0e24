package models

import "time"

// Training is a course members can complete. The training subsystem owns the
// catalog; the rank core reads it for promotion prerequisites.
type Training struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	IsHidden bool   `gorm:"default:false" json:"is_hidden"`
	Timestamps
}

// TrainingCompletion records that a member completed a training. A completion
// flagged NeedsRetraining has lapsed; whether it still counts toward promotion
// prerequisites is a policy decision (see services.TrainingPolicy).
type TrainingCompletion struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`
	TrainingID     string `gorm:"type:uuid;index;not null" json:"training_id"`

	Training *Training `gorm:"foreignKey:TrainingID;references:ID" json:"training,omitempty"`

	NeedsRetraining bool `gorm:"default:false" json:"needs_retraining"`

	CompletedAt time.Time `json:"completed_at"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}
