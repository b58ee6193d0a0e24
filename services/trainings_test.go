package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedTrainingsDefaultPolicy(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrainingDirectoryService(db, TrainingPolicy{})
	user := seedRosterUser(t, db, "alice")

	visible := seedTraining(t, db, "Basic Combat", false)
	hidden := seedTraining(t, db, "Cadre Prep", true)
	lapsed := seedTraining(t, db, "Field Medic", false)

	seedCompletion(t, db, user.ExternalUserID, visible.ID, false)
	seedCompletion(t, db, user.ExternalUserID, hidden.ID, false)
	seedCompletion(t, db, user.ExternalUserID, lapsed.ID, true)

	completed, err := svc.CompletedTrainings(user.ExternalUserID)
	require.NoError(t, err)

	assert.True(t, completed[visible.ID])
	assert.False(t, completed[hidden.ID])
	assert.False(t, completed[lapsed.ID])
}

func TestCompletedTrainingsPermissivePolicy(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrainingDirectoryService(db, TrainingPolicy{
		CountHidden:          true,
		CountNeedsRetraining: true,
	})
	user := seedRosterUser(t, db, "bob")

	hidden := seedTraining(t, db, "Cadre Prep", true)
	lapsed := seedTraining(t, db, "Field Medic", false)

	seedCompletion(t, db, user.ExternalUserID, hidden.ID, false)
	seedCompletion(t, db, user.ExternalUserID, lapsed.ID, true)

	completed, err := svc.CompletedTrainings(user.ExternalUserID)
	require.NoError(t, err)

	assert.True(t, completed[hidden.ID])
	assert.True(t, completed[lapsed.ID])
}

func TestCompletedTrainingsEmptyForUnknownMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrainingDirectoryService(db, TrainingPolicy{})

	completed, err := svc.CompletedTrainings("nobody")
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestUserDirectoryExistsAndLookup(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserDirectoryService(db)

	user := seedRosterUser(t, db, "carol")

	ok, err := svc.Exists(user.ExternalUserID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := svc.Lookup(user.ExternalUserID)
	require.NoError(t, err)
	assert.Equal(t, "carol", found.Username)

	_, err = svc.Lookup("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
