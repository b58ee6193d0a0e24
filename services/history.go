package services

import (
	"time"

	"roster-rank-system/models"

	"gorm.io/gorm"
)

const HistoryPageSize = 20

// HistoryService is the append-only rank history ledger. Append happens inside
// the rank-state transaction; there is deliberately no update or delete path.
type HistoryService struct {
	DB *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// append writes one ledger entry inside the caller's transaction so the entry
// and the rank-state mutation are visible together or not at all.
func (s *HistoryService) append(tx *gorm.DB, entry *models.RankHistoryEntry) error {
	return tx.Create(entry).Error
}

// HistoryPage is one page of a member's rank history, newest first.
type HistoryPage struct {
	Entries    []models.RankHistoryEntry `json:"entries"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalItems int64                     `json:"total_items"`
	TotalPages int                       `json:"total_pages"`
}

// Page returns the member's history ordered newest-first. Caller authorization
// (non-admins may only read their own history) is enforced at the route layer.
func (s *HistoryService) Page(externalUserID string, page int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	size := HistoryPageSize
	offset := (page - 1) * size

	var total int64
	if err := s.DB.Model(&models.RankHistoryEntry{}).
		Where("external_user_id = ?", externalUserID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var entries []models.RankHistoryEntry
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return &HistoryPage{
		Entries:    entries,
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// AppendedSince returns entries created after the cursor, oldest first.
// Used by the archive worker to export new entries incrementally.
func (s *HistoryService) AppendedSince(cursor time.Time, limit int) ([]models.RankHistoryEntry, error) {
	if limit < 1 || limit > 500 {
		limit = 500
	}
	var entries []models.RankHistoryEntry
	err := s.DB.Where("created_at > ?", cursor).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
