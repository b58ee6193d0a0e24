package services

import (
	"roster-rank-system/models"

	"gorm.io/gorm"
)

// AttendanceService reads the attendance ledger (owned by the attendance
// subsystem) to compute qualifying counts for rank progression. It never
// writes attendance rows.
type AttendanceService struct {
	DB *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{DB: db}
}

// CountQualifying returns the member's all-time qualifying attendance count:
// present at a main operation. A member with no rows counts as zero; user
// existence is the caller's concern.
func (s *AttendanceService) CountQualifying(externalUserID string) (int64, error) {
	return s.countQualifying(s.DB, externalUserID)
}

func (s *AttendanceService) countQualifying(tx *gorm.DB, externalUserID string) (int64, error) {
	var count int64
	err := tx.Model(&models.AttendanceRecord{}).
		Joins("INNER JOIN operations ON operations.id = attendance_records.operation_id").
		Where("attendance_records.external_user_id = ? AND attendance_records.status = ? AND operations.kind = ?",
			externalUserID, models.AttendancePresent, models.OperationMain).
		Count(&count).Error
	return count, err
}

// DeltaSinceLastRank returns the qualifying count accrued since the member's
// last rank change: total minus the snapshot stored on their rank state,
// floored at zero. A member with no rank state gets the full total.
func (s *AttendanceService) DeltaSinceLastRank(externalUserID string) (int64, error) {
	total, err := s.CountQualifying(externalUserID)
	if err != nil {
		return 0, err
	}

	var state models.UserRankState
	err = s.DB.Where("external_user_id = ?", externalUserID).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		return total, nil
	}
	if err != nil {
		return 0, err
	}

	delta := total - state.AttendanceSinceLastRank
	if delta < 0 {
		delta = 0
	}
	return delta, nil
}
