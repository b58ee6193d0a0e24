package services

import (
	"time"

	"roster-rank-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankStateService owns UserRankState rows and every mutation path into them.
// All read-modify-write sequences run inside a transaction with the state row
// locked, so concurrent mutations for the same member serialize.
type RankStateService struct {
	DB         *gorm.DB
	Attendance *AttendanceService
	History    *HistoryService
	Users      *UserDirectoryService
}

func NewRankStateService(db *gorm.DB) *RankStateService {
	return &RankStateService{
		DB:         db,
		Attendance: NewAttendanceService(db),
		History:    NewHistoryService(db),
		Users:      NewUserDirectoryService(db),
	}
}

// lockState fetches the member's rank state FOR UPDATE inside tx. Returns
// (nil, nil) when the member has no state row yet. sqlite has no FOR UPDATE;
// its single-writer transaction lock covers the same invariant.
func (s *RankStateService) lockState(tx *gorm.DB, externalUserID string) (*models.UserRankState, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var state models.UserRankState
	err := q.Where("external_user_id = ?", externalUserID).
		First(&state).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetState returns the member's rank state with the current rank preloaded, or
// a zero-value view when no row exists yet.
func (s *RankStateService) GetState(externalUserID string) (*models.UserRankState, error) {
	var state models.UserRankState
	err := s.DB.Preload("CurrentRank").
		Where("external_user_id = ?", externalUserID).
		First(&state).Error
	if err == gorm.ErrRecordNotFound {
		return &models.UserRankState{ExternalUserID: externalUserID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// AssignRank moves a member to the given rank. The state upsert and the
// history append share one transaction; a partial write would corrupt the
// audit trail. trigger is admin|auto|self, actorID is nil for auto.
func (s *RankStateService) AssignRank(externalUserID, rankID, trigger string, actorID *string) (*models.UserRankState, error) {
	var result *models.UserRankState
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := s.assignRankTx(tx, externalUserID, rankID, trigger, actorID, nil)
		if err != nil {
			return err
		}
		result = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// assignRankTx is AssignRank inside an existing transaction, shared with
// BulkAssignRank and proposal approval. declineReason is always nil for
// approvals; the parameter exists so declined self-requests can be ledgered
// through the same code path.
func (s *RankStateService) assignRankTx(tx *gorm.DB, externalUserID, rankID, trigger string, actorID, declineReason *string) (*models.UserRankState, error) {
	var rank models.Rank
	if err := tx.Where("id = ?", rankID).First(&rank).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundErr("rank %s not found", rankID)
		}
		return nil, err
	}

	total, err := s.Attendance.countQualifying(tx, externalUserID)
	if err != nil {
		return nil, err
	}

	state, err := s.lockState(tx, externalUserID)
	if err != nil {
		return nil, err
	}

	var previousRankName *string
	var previousSince int64
	isNew := state == nil
	if isNew {
		state = &models.UserRankState{ID: uuid.NewString(), ExternalUserID: externalUserID}
	} else {
		previousSince = state.AttendanceSinceLastRank
		if state.CurrentRankID != nil {
			var prev models.Rank
			if err := tx.Where("id = ?", *state.CurrentRankID).First(&prev).Error; err == nil {
				previousRankName = &prev.Name
			}
		}
	}

	delta := total - previousSince
	if delta < 0 {
		delta = 0
	}

	now := time.Now()
	state.CurrentRankID = &rank.ID
	state.LastRankedUpAt = &now
	// The counter restarts at the cumulative qualifying total, not at zero;
	// eligibility deltas subtract this snapshot from the running total.
	state.AttendanceSinceLastRank = total

	if isNew {
		err = tx.Create(state).Error
	} else {
		err = tx.Save(state).Error
	}
	if err != nil {
		return nil, err
	}

	entry := &models.RankHistoryEntry{
		ID:                           uuid.NewString(),
		ExternalUserID:               externalUserID,
		PreviousRankName:             previousRankName,
		NewRankName:                  rank.Name,
		AttendanceTotalAtChange:      total,
		AttendanceDeltaSinceLastRank: delta,
		TriggeredBy:                  trigger,
		TriggeredByUserID:            actorID,
		Outcome:                      models.OutcomeApproved,
		DeclineReason:                declineReason,
	}
	if err := s.History.append(tx, entry); err != nil {
		return nil, err
	}

	state.CurrentRank = &rank
	return state, nil
}

// BulkAssignRank applies AssignRank to every member in one transaction.
// Every user ID is validated against the roster before any write; any unknown
// member rejects the whole batch.
func (s *RankStateService) BulkAssignRank(externalUserIDs []string, rankID, trigger string, actorID *string) error {
	if len(externalUserIDs) == 0 {
		return validationErr("no user IDs supplied")
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, uid := range externalUserIDs {
			exists, err := s.Users.existsTx(tx, uid)
			if err != nil {
				return err
			}
			if !exists {
				return notFoundErr("user %s not found", uid)
			}
		}
		for _, uid := range externalUserIDs {
			if _, err := s.assignRankTx(tx, uid, rankID, trigger, actorID, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// ToggleRetired flips the member's retired flag, creating the state row with
// retired=true on first call. The flip runs under a row lock so concurrent
// toggles cannot lose updates.
func (s *RankStateService) ToggleRetired(externalUserID string) (*models.UserRankState, error) {
	return s.toggleFlag(externalUserID, func(state *models.UserRankState) {
		state.Retired = !state.Retired
	})
}

// ToggleInterviewDone flips the member's interview-done flag; same contract as
// ToggleRetired.
func (s *RankStateService) ToggleInterviewDone(externalUserID string) (*models.UserRankState, error) {
	return s.toggleFlag(externalUserID, func(state *models.UserRankState) {
		state.InterviewDone = !state.InterviewDone
	})
}

func (s *RankStateService) toggleFlag(externalUserID string, flip func(*models.UserRankState)) (*models.UserRankState, error) {
	var result *models.UserRankState
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := s.lockState(tx, externalUserID)
		if err != nil {
			return err
		}
		isNew := state == nil
		if isNew {
			state = &models.UserRankState{ID: uuid.NewString(), ExternalUserID: externalUserID}
		}
		flip(state)
		if isNew {
			err = tx.Create(state).Error
		} else {
			err = tx.Save(state).Error
		}
		if err != nil {
			return err
		}
		result = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MemberOverview is the admin listing row: roster identity joined with rank
// state and current rank display data.
type MemberOverview struct {
	ExternalUserID          string     `json:"external_user_id"`
	Username                string     `json:"username"`
	RankName                *string    `json:"rank_name,omitempty"`
	RankAbbreviation        *string    `json:"rank_abbreviation,omitempty"`
	AttendanceSinceLastRank int64      `json:"attendance_since_last_rank"`
	LastRankedUpAt          *time.Time `json:"last_ranked_up_at,omitempty"`
	Retired                 bool       `json:"retired"`
	InterviewDone           bool       `json:"interview_done"`
}

// ListMembers returns the member rank overview for admin display.
func (s *RankStateService) ListMembers() ([]MemberOverview, error) {
	var rows []MemberOverview
	err := s.DB.Model(&models.RosterUser{}).
		Select(`roster_users.external_user_id, roster_users.username,
			ranks.name AS rank_name, ranks.abbreviation AS rank_abbreviation,
			COALESCE(user_rank_states.attendance_since_last_rank, 0) AS attendance_since_last_rank,
			user_rank_states.last_ranked_up_at,
			COALESCE(user_rank_states.retired, false) AS retired,
			COALESCE(user_rank_states.interview_done, false) AS interview_done`).
		Joins("LEFT JOIN user_rank_states ON user_rank_states.external_user_id = roster_users.external_user_id AND user_rank_states.deleted_at IS NULL").
		Joins("LEFT JOIN ranks ON ranks.id = user_rank_states.current_rank_id").
		Where("roster_users.deleted_at IS NULL").
		Order("roster_users.username ASC").
		Scan(&rows).Error
	return rows, err
}
