package services

import (
	"roster-rank-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProposalService manages the promotion proposal queue. Proposals move from
// pending to exactly one of approved or declined; decisions race under a
// conditional update so the losing admin observes a Conflict.
type ProposalService struct {
	DB           *gorm.DB
	Ranks        *RankService
	Attendance   *AttendanceService
	Trainings    *TrainingDirectoryService
	Requirements *RequirementService
	RankState    *RankStateService
}

func NewProposalService(db *gorm.DB, policy TrainingPolicy) *ProposalService {
	return &ProposalService{
		DB:           db,
		Ranks:        NewRankService(db),
		Attendance:   NewAttendanceService(db),
		Trainings:    NewTrainingDirectoryService(db, policy),
		Requirements: NewRequirementService(db),
		RankState:    NewRankStateService(db),
	}
}

// ListPending returns all pending proposals with current/next rank display
// data preloaded, oldest first so the queue drains in order.
func (s *ProposalService) ListPending() ([]models.PromotionProposal, error) {
	var proposals []models.PromotionProposal
	err := s.DB.Preload("CurrentRank").Preload("NextRank").
		Where("status = ?", models.ProposalPending).
		Order("created_at ASC").
		Find(&proposals).Error
	return proposals, err
}

// CreatePending queues a proposal for the member to move to nextRankID unless
// an identical pending proposal already exists (the queue stays duplicate-free
// per user and target).
func (s *ProposalService) CreatePending(externalUserID string, currentRankID *string, nextRankID, triggeredBy string) (*models.PromotionProposal, error) {
	var existing models.PromotionProposal
	err := s.DB.Where("external_user_id = ? AND next_rank_id = ? AND status = ?",
		externalUserID, nextRankID, models.ProposalPending).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	proposal := &models.PromotionProposal{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		CurrentRankID:  currentRankID,
		NextRankID:     nextRankID,
		Status:         models.ProposalPending,
		TriggeredBy:    triggeredBy,
	}
	if err := s.DB.Create(proposal).Error; err != nil {
		return nil, err
	}
	return proposal, nil
}

// Approve resolves a pending proposal and performs the rank change in the same
// transaction. A proposal already resolved by another admin yields Conflict.
func (s *ProposalService) Approve(proposalID string, actorID string) (*models.UserRankState, error) {
	var state *models.UserRankState
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		proposal, err := s.resolve(tx, proposalID, models.ProposalApproved)
		if err != nil {
			return err
		}

		state, err = s.RankState.assignRankTx(tx, proposal.ExternalUserID,
			proposal.NextRankID, proposal.TriggeredBy, &actorID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Decline resolves a pending proposal without any rank-state mutation. The
// decision is still ledgered so the audit trail shows the declined attempt.
func (s *ProposalService) Decline(proposalID string, actorID string, reason *string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		proposal, err := s.resolve(tx, proposalID, models.ProposalDeclined)
		if err != nil {
			return err
		}

		var currentName *string
		if proposal.CurrentRankID != nil {
			var current models.Rank
			if err := tx.Where("id = ?", *proposal.CurrentRankID).First(&current).Error; err == nil {
				currentName = &current.Name
			}
		}

		var next models.Rank
		if err := tx.Where("id = ?", proposal.NextRankID).First(&next).Error; err != nil {
			return err
		}

		total, err := s.Attendance.countQualifying(tx, proposal.ExternalUserID)
		if err != nil {
			return err
		}

		entry := &models.RankHistoryEntry{
			ID:                      uuid.NewString(),
			ExternalUserID:          proposal.ExternalUserID,
			PreviousRankName:        currentName,
			NewRankName:             next.Name,
			AttendanceTotalAtChange: total,
			TriggeredBy:             proposal.TriggeredBy,
			TriggeredByUserID:       &actorID,
			Outcome:                 models.OutcomeDeclined,
			DeclineReason:           reason,
		}
		return tx.Create(entry).Error
	})
}

// resolve flips a pending proposal to the target status under a row lock.
// NotFound when the proposal does not exist, Conflict when it is already
// resolved — only the first decision ever lands.
func (s *ProposalService) resolve(tx *gorm.DB, proposalID, status string) (*models.PromotionProposal, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var proposal models.PromotionProposal
	err := q.Where("id = ?", proposalID).
		First(&proposal).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundErr("proposal %s not found", proposalID)
	}
	if err != nil {
		return nil, err
	}

	res := tx.Model(&models.PromotionProposal{}).
		Where("id = ? AND status = ?", proposalID, models.ProposalPending).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, conflictErr("proposal %s already resolved (%s)", proposalID, proposal.Status)
	}

	proposal.Status = status
	return &proposal, nil
}

// EvaluateNextRank runs the rule engine for the member's next-higher rank.
// Returns the candidate rank (nil when already at the top of the catalog or
// the catalog is empty) alongside the verdict.
func (s *ProposalService) EvaluateNextRank(externalUserID string) (*models.Rank, *Eligibility, error) {
	state, err := s.RankState.GetState(externalUserID)
	if err != nil {
		return nil, nil, err
	}

	next, err := s.Ranks.NextRank(state.CurrentRankID)
	if err != nil {
		return nil, nil, err
	}
	if next == nil {
		return nil, nil, nil
	}

	delta, err := s.Attendance.DeltaSinceLastRank(externalUserID)
	if err != nil {
		return nil, nil, err
	}

	required, err := s.Requirements.RequiredTrainingsFor(next.ID)
	if err != nil {
		return nil, nil, err
	}

	completed := map[string]bool{}
	if len(required) > 0 {
		completed, err = s.Trainings.CompletedTrainings(externalUserID)
		if err != nil {
			return nil, nil, err
		}
	}

	verdict := EvaluatePromotion(delta, next.AttendanceRequiredSinceLastRank, required, completed)
	return next, &verdict, nil
}
