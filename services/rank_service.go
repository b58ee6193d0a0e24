package services

import (
	"roster-rank-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// RankService owns the rank catalog: CRUD, atomic reordering, and the
// delete guard that keeps ranks with assigned members alive.
type RankService struct {
	DB *gorm.DB
}

func NewRankService(db *gorm.DB) *RankService {
	return &RankService{DB: db}
}

// CreateRankRequest carries the catalog fields for create and update.
type CreateRankRequest struct {
	Name                            string `json:"name" validate:"required,max=100"`
	Abbreviation                    string `json:"abbreviation" validate:"required,max=20"`
	OrderIndex                      int    `json:"order_index"`
	AttendanceRequiredSinceLastRank *int64 `json:"attendance_required_since_last_rank,omitempty" validate:"omitempty,min=0"`
	AutoRankupEnabled               bool   `json:"auto_rankup_enabled"`
}

func (s *RankService) ListRanks() ([]models.Rank, error) {
	var ranks []models.Rank
	err := s.DB.Order("order_index ASC").Find(&ranks).Error
	return ranks, err
}

func (s *RankService) GetRank(id string) (*models.Rank, error) {
	var rank models.Rank
	err := s.DB.Where("id = ?", id).First(&rank).Error
	if err == gorm.ErrRecordNotFound {
		return nil, notFoundErr("rank %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

func (s *RankService) CreateRank(req *CreateRankRequest) (*models.Rank, error) {
	rank := &models.Rank{
		ID:                              uuid.NewString(),
		Name:                            req.Name,
		Abbreviation:                    req.Abbreviation,
		Slug:                            slug.Make(req.Name),
		OrderIndex:                      req.OrderIndex,
		AttendanceRequiredSinceLastRank: req.AttendanceRequiredSinceLastRank,
		AutoRankupEnabled:               req.AutoRankupEnabled,
	}
	if err := s.DB.Create(rank).Error; err != nil {
		return nil, err
	}
	return rank, nil
}

func (s *RankService) UpdateRank(id string, req *CreateRankRequest) (*models.Rank, error) {
	rank, err := s.GetRank(id)
	if err != nil {
		return nil, err
	}
	rank.Name = req.Name
	rank.Abbreviation = req.Abbreviation
	rank.Slug = slug.Make(req.Name)
	rank.OrderIndex = req.OrderIndex
	rank.AttendanceRequiredSinceLastRank = req.AttendanceRequiredSinceLastRank
	rank.AutoRankupEnabled = req.AutoRankupEnabled
	if err := s.DB.Save(rank).Error; err != nil {
		return nil, err
	}
	return rank, nil
}

// DeleteRank removes a catalog entry. Refused with Conflict while any member
// is still assigned to it, leaving rank and assignments unchanged.
func (s *RankService) DeleteRank(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rank models.Rank
		if err := tx.Where("id = ?", id).First(&rank).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return notFoundErr("rank %s not found", id)
			}
			return err
		}

		var assigned int64
		if err := tx.Model(&models.UserRankState{}).
			Where("current_rank_id = ?", id).
			Count(&assigned).Error; err != nil {
			return err
		}
		if assigned > 0 {
			return conflictErr("rank %s has %d assigned members", rank.Name, assigned)
		}

		return tx.Delete(&rank).Error
	})
}

// ReorderRanks applies a bulk reindex of order_index values as one
// transaction. Duplicate positions or unknown ranks reject the whole batch
// before any write, so readers never observe a half-applied order.
func (s *RankService) ReorderRanks(positions map[string]int) error {
	if len(positions) == 0 {
		return validationErr("no positions supplied")
	}

	seen := make(map[int]bool, len(positions))
	for _, pos := range positions {
		if seen[pos] {
			return validationErr("duplicate order index %d", pos)
		}
		seen[pos] = true
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for id := range positions {
			var count int64
			if err := tx.Model(&models.Rank{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return notFoundErr("rank %s not found", id)
			}
		}
		for id, pos := range positions {
			if err := tx.Model(&models.Rank{}).Where("id = ?", id).
				Update("order_index", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// NextRank returns the catalog entry directly above the given rank, or the
// lowest rank when currentRankID is nil. (nil, nil) when already at the top.
func (s *RankService) NextRank(currentRankID *string) (*models.Rank, error) {
	if currentRankID == nil {
		var lowest models.Rank
		err := s.DB.Order("order_index ASC").First(&lowest).Error
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &lowest, nil
	}

	current, err := s.GetRank(*currentRankID)
	if err != nil {
		return nil, err
	}

	var next models.Rank
	err = s.DB.Where("order_index > ?", current.OrderIndex).
		Order("order_index ASC").
		First(&next).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}
