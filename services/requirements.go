package services

import (
	"roster-rank-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequirementService manages the training prerequisites per target rank.
// An empty training list is a valid requirement set and means "no training
// requirement" to the rule engine.
type RequirementService struct {
	DB *gorm.DB
}

func NewRequirementService(db *gorm.DB) *RequirementService {
	return &RequirementService{DB: db}
}

// GetForRank returns the requirement set for a target rank, or nil when none
// was ever configured.
func (s *RequirementService) GetForRank(targetRankID string) (*models.RankTransitionRequirement, error) {
	var req models.RankTransitionRequirement
	err := s.DB.Preload("Trainings").
		Where("target_rank_id = ?", targetRankID).
		First(&req).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RequiredTrainingsFor resolves the rule-engine view of a target rank's
// prerequisites. No requirement set and an empty set both mean no prerequisite.
func (s *RequirementService) RequiredTrainingsFor(targetRankID string) ([]RequiredTraining, error) {
	req, err := s.GetForRank(targetRankID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, nil
	}
	out := make([]RequiredTraining, 0, len(req.Trainings))
	for _, tr := range req.Trainings {
		out = append(out, RequiredTraining{ID: tr.ID, Name: tr.Name})
	}
	return out, nil
}

// SetForRank replaces the requirement set for a target rank with the given
// training IDs (deduplicated). Creates the set when absent; every training
// must exist or the whole update is rejected.
func (s *RequirementService) SetForRank(targetRankID string, trainingIDs []string) (*models.RankTransitionRequirement, error) {
	var result *models.RankTransitionRequirement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rankCount int64
		if err := tx.Model(&models.Rank{}).Where("id = ?", targetRankID).Count(&rankCount).Error; err != nil {
			return err
		}
		if rankCount == 0 {
			return notFoundErr("rank %s not found", targetRankID)
		}

		unique := make([]string, 0, len(trainingIDs))
		seen := make(map[string]bool, len(trainingIDs))
		for _, id := range trainingIDs {
			if !seen[id] {
				seen[id] = true
				unique = append(unique, id)
			}
		}

		var trainings []models.Training
		if len(unique) > 0 {
			if err := tx.Where("id IN ?", unique).Find(&trainings).Error; err != nil {
				return err
			}
			if len(trainings) != len(unique) {
				return notFoundErr("one or more trainings not found")
			}
		}

		var req models.RankTransitionRequirement
		err := tx.Where("target_rank_id = ?", targetRankID).First(&req).Error
		if err == gorm.ErrRecordNotFound {
			req = models.RankTransitionRequirement{
				ID:           uuid.NewString(),
				TargetRankID: targetRankID,
			}
			if err := tx.Create(&req).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		assoc := tx.Model(&req).Association("Trainings")
		if len(trainings) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(&trainings)
		}
		if err != nil {
			return err
		}

		req.Trainings = trainings
		result = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteForRank removes the requirement set entirely. Idempotent: deleting a
// missing set reports NotFound so admins notice stale IDs.
func (s *RequirementService) DeleteForRank(targetRankID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var req models.RankTransitionRequirement
		err := tx.Where("target_rank_id = ?", targetRankID).First(&req).Error
		if err == gorm.ErrRecordNotFound {
			return notFoundErr("no requirement set for rank %s", targetRankID)
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&req).Association("Trainings").Clear(); err != nil {
			return err
		}
		return tx.Delete(&req).Error
	})
}
