package models

// Promotion proposal lifecycle states.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalDeclined = "declined"
)

// PromotionProposal is a queued request for a member to move to the next rank.
// pending → approved (produces a rank change + history entry) or
// pending → declined (terminal, no state mutation). Terminal states never
// transition again.
type PromotionProposal struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	CurrentRankID *string `gorm:"type:uuid" json:"current_rank_id,omitempty"`
	NextRankID    string  `gorm:"type:uuid;not null" json:"next_rank_id"`

	CurrentRank *Rank `gorm:"foreignKey:CurrentRankID;references:ID" json:"current_rank,omitempty"`
	NextRank    *Rank `gorm:"foreignKey:NextRankID;references:ID" json:"next_rank,omitempty"`

	Status string `gorm:"default:pending;index" json:"status"` // pending | approved | declined

	// TriggeredBy records who raised the proposal (auto sweep or the member).
	TriggeredBy string `gorm:"default:auto" json:"triggered_by"`

	Timestamps
}
