package models

import "time"

// UserRankState tracks per-member rank progression (one row per member,
// created lazily on first mutation).
type UserRankState struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	CurrentRankID *string `gorm:"type:uuid;index" json:"current_rank_id,omitempty"`
	CurrentRank   *Rank   `gorm:"foreignKey:CurrentRankID;references:ID" json:"current_rank,omitempty"`

	LastRankedUpAt *time.Time `json:"last_ranked_up_at,omitempty"`

	// AttendanceSinceLastRank restarts at the member's cumulative qualifying
	// total on every rank change (not at zero). Eligibility deltas are computed
	// against this snapshot, floored at zero.
	AttendanceSinceLastRank int64 `gorm:"default:0" json:"attendance_since_last_rank"`

	Retired       bool `gorm:"default:false" json:"retired"`
	InterviewDone bool `gorm:"default:false" json:"interview_done"`

	Timestamps
}
