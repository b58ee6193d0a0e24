package services

import (
	"fmt"
	"testing"
	"time"

	"roster-rank-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Rank{},
		&models.RankTransitionRequirement{},
		&models.UserRankState{},
		&models.RankHistoryEntry{},
		&models.PromotionProposal{},
		&models.RosterUser{},
		&models.Operation{},
		&models.AttendanceRecord{},
		&models.Training{},
		&models.TrainingCompletion{},
	))

	return db
}

func seedRank(t *testing.T, db *gorm.DB, name string, orderIndex int, threshold *int64, autoRankup bool) *models.Rank {
	t.Helper()

	rank := &models.Rank{
		ID:                              uuid.NewString(),
		Name:                            name,
		Abbreviation:                    name[:1],
		Slug:                            name,
		OrderIndex:                      orderIndex,
		AttendanceRequiredSinceLastRank: threshold,
		AutoRankupEnabled:               autoRankup,
	}
	require.NoError(t, db.Create(rank).Error)
	return rank
}

func seedRosterUser(t *testing.T, db *gorm.DB, username string) *models.RosterUser {
	t.Helper()

	user := &models.RosterUser{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedAttendance records n qualifying attendances (present at a main
// operation) for the member.
func seedAttendance(t *testing.T, db *gorm.DB, externalUserID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		seedAttendanceRecord(t, db, externalUserID, models.OperationMain, models.AttendancePresent)
	}
}

func seedAttendanceRecord(t *testing.T, db *gorm.DB, externalUserID, kind, status string) {
	t.Helper()

	op := &models.Operation{
		ID:     uuid.NewString(),
		Name:   "Op " + uuid.NewString()[:8],
		Kind:   kind,
		HeldAt: time.Now(),
	}
	require.NoError(t, db.Create(op).Error)

	rec := &models.AttendanceRecord{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		OperationID:    op.ID,
		Status:         status,
	}
	require.NoError(t, db.Create(rec).Error)
}

func seedTraining(t *testing.T, db *gorm.DB, name string, hidden bool) *models.Training {
	t.Helper()

	tr := &models.Training{
		ID:       uuid.NewString(),
		Name:     name,
		IsHidden: hidden,
	}
	require.NoError(t, db.Create(tr).Error)
	return tr
}

func seedCompletion(t *testing.T, db *gorm.DB, externalUserID, trainingID string, needsRetraining bool) {
	t.Helper()

	c := &models.TrainingCompletion{
		ID:              uuid.NewString(),
		ExternalUserID:  externalUserID,
		TrainingID:      trainingID,
		NeedsRetraining: needsRetraining,
		CompletedAt:     time.Now(),
	}
	require.NoError(t, db.Create(c).Error)
}

func historyCount(t *testing.T, db *gorm.DB, externalUserID string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.RankHistoryEntry{}).
		Where("external_user_id = ?", externalUserID).
		Count(&count).Error)
	return count
}

func int64Ptr(v int64) *int64 { return &v }
