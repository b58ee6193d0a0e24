package models

import (
	"time"

	"gorm.io/gorm"
)

// Rank is one entry of the unit's rank catalog. OrderIndex defines the
// promotion direction: a higher index is a higher rank.
type Rank struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string `gorm:"uniqueIndex;not null" json:"name"`
	Abbreviation string `gorm:"not null" json:"abbreviation"`
	Slug         string `gorm:"uniqueIndex;not null" json:"slug"`
	OrderIndex   int    `gorm:"not null;index" json:"order_index"`

	// AttendanceRequiredSinceLastRank is the qualifying-attendance threshold a
	// member must accrue since their last rank change before this rank can be
	// reached. Null means no attendance requirement.
	AttendanceRequiredSinceLastRank *int64 `json:"attendance_required_since_last_rank,omitempty"`

	AutoRankupEnabled bool `gorm:"default:false" json:"auto_rankup_enabled"`

	Timestamps
}

// RankTransitionRequirement holds the training prerequisites for reaching a
// target rank. At most one requirement set exists per target rank; an empty
// training list means "no training requirement".
type RankTransitionRequirement struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	TargetRankID string `gorm:"uniqueIndex;not null;type:uuid" json:"target_rank_id"`

	TargetRank *Rank      `gorm:"foreignKey:TargetRankID;references:ID" json:"target_rank,omitempty"`
	Trainings  []Training `gorm:"many2many:rank_requirement_trainings;" json:"trainings,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
