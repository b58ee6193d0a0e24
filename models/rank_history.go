package models

import "time"

// Trigger sources for a rank change.
const (
	TriggerAdmin = "admin"
	TriggerAuto  = "auto"
	TriggerSelf  = "self"
)

// Outcomes recorded in the history ledger.
const (
	OutcomeApproved = "approved"
	OutcomeDeclined = "declined"
)

// RankHistoryEntry is the append-only audit trail of rank changes. Rows are
// never updated or deleted after insert; rank names are denormalized so the
// trail survives catalog edits.
type RankHistoryEntry struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	PreviousRankName *string `json:"previous_rank_name,omitempty"` // null on first assignment
	NewRankName      string  `gorm:"not null" json:"new_rank_name"`

	AttendanceTotalAtChange      int64 `gorm:"default:0" json:"attendance_total_at_change"`
	AttendanceDeltaSinceLastRank int64 `gorm:"default:0" json:"attendance_delta_since_last_rank"`

	TriggeredBy       string  `gorm:"not null" json:"triggered_by"` // admin | auto | self
	TriggeredByUserID *string `json:"triggered_by_user_id,omitempty"`

	Outcome       string  `gorm:"not null" json:"outcome"` // approved | declined
	DeclineReason *string `json:"decline_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
