package services

import (
	"roster-rank-system/models"

	"gorm.io/gorm"
)

// TrainingDirectoryService reads the training catalog and completion records
// owned by the training subsystem.
type TrainingDirectoryService struct {
	DB     *gorm.DB
	Policy TrainingPolicy
}

func NewTrainingDirectoryService(db *gorm.DB, policy TrainingPolicy) *TrainingDirectoryService {
	return &TrainingDirectoryService{DB: db, Policy: policy}
}

// CompletedTrainings returns the set of training IDs that count as completed
// for the member under the configured policy. Hidden trainings and lapsed
// completions are excluded unless the policy says otherwise.
func (s *TrainingDirectoryService) CompletedTrainings(externalUserID string) (map[string]bool, error) {
	q := s.DB.Model(&models.TrainingCompletion{}).
		Joins("INNER JOIN trainings ON trainings.id = training_completions.training_id").
		Where("training_completions.external_user_id = ?", externalUserID)

	if !s.Policy.CountHidden {
		q = q.Where("trainings.is_hidden = ?", false)
	}
	if !s.Policy.CountNeedsRetraining {
		q = q.Where("training_completions.needs_retraining = ?", false)
	}

	var ids []string
	if err := q.Pluck("training_completions.training_id", &ids).Error; err != nil {
		return nil, err
	}

	completed := make(map[string]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}
