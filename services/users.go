package services

import (
	"roster-rank-system/models"

	"gorm.io/gorm"
)

// UserDirectoryService answers user existence and lookup questions against the
// local roster mirror (populated by the roster sync worker). The profile
// service stays the source of truth.
type UserDirectoryService struct {
	DB *gorm.DB
}

func NewUserDirectoryService(db *gorm.DB) *UserDirectoryService {
	return &UserDirectoryService{DB: db}
}

func (s *UserDirectoryService) Exists(externalUserID string) (bool, error) {
	return s.existsTx(s.DB, externalUserID)
}

func (s *UserDirectoryService) existsTx(tx *gorm.DB, externalUserID string) (bool, error) {
	var count int64
	err := tx.Model(&models.RosterUser{}).
		Where("external_user_id = ?", externalUserID).
		Count(&count).Error
	return count > 0, err
}

// Lookup returns the roster identity for a member, NotFound when absent.
func (s *UserDirectoryService) Lookup(externalUserID string) (*models.RosterUser, error) {
	var user models.RosterUser
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundErr("user %s not found", externalUserID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ActiveMemberIDs lists external IDs of non-retired roster members; the auto
// promotion sweep iterates over this set.
func (s *UserDirectoryService) ActiveMemberIDs() ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.RosterUser{}).
		Joins("LEFT JOIN user_rank_states ON user_rank_states.external_user_id = roster_users.external_user_id AND user_rank_states.deleted_at IS NULL").
		Where("roster_users.deleted_at IS NULL AND COALESCE(user_rank_states.retired, false) = false").
		Pluck("roster_users.external_user_id", &ids).Error
	return ids, err
}
