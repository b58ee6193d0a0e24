package services

import (
	"testing"

	"roster-rank-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRankCreatesStateAndHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	corporal := seedRank(t, db, "Corporal", 1, int64Ptr(5), false)
	user := seedRosterUser(t, db, "alice")
	seedAttendance(t, db, user.ExternalUserID, 7)

	actor := "admin-1"
	state, err := svc.AssignRank(user.ExternalUserID, corporal.ID, models.TriggerAdmin, &actor)
	require.NoError(t, err)

	// The since-counter restarts at the cumulative total, not at zero.
	assert.Equal(t, int64(7), state.AttendanceSinceLastRank)
	require.NotNil(t, state.CurrentRankID)
	assert.Equal(t, corporal.ID, *state.CurrentRankID)
	assert.NotNil(t, state.LastRankedUpAt)

	page, err := NewHistoryService(db).Page(user.ExternalUserID, 1)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)

	entry := page.Entries[0]
	assert.Equal(t, "Corporal", entry.NewRankName)
	assert.Nil(t, entry.PreviousRankName)
	assert.Equal(t, int64(7), entry.AttendanceTotalAtChange)
	assert.Equal(t, int64(7), entry.AttendanceDeltaSinceLastRank)
	assert.Equal(t, models.OutcomeApproved, entry.Outcome)
	assert.Equal(t, models.TriggerAdmin, entry.TriggeredBy)
	require.NotNil(t, entry.TriggeredByUserID)
	assert.Equal(t, actor, *entry.TriggeredByUserID)
}

func TestAssignRankRecordsPreviousRankAndDelta(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	private := seedRank(t, db, "Private", 0, nil, false)
	corporal := seedRank(t, db, "Corporal", 1, int64Ptr(5), false)
	user := seedRosterUser(t, db, "bob")

	_, err := svc.AssignRank(user.ExternalUserID, private.ID, models.TriggerAdmin, nil)
	require.NoError(t, err)

	seedAttendance(t, db, user.ExternalUserID, 7)

	state, err := svc.AssignRank(user.ExternalUserID, corporal.ID, models.TriggerAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), state.AttendanceSinceLastRank)

	page, err := NewHistoryService(db).Page(user.ExternalUserID, 1)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)

	// Newest first: the Corporal entry leads.
	entry := page.Entries[0]
	require.NotNil(t, entry.PreviousRankName)
	assert.Equal(t, "Private", *entry.PreviousRankName)
	assert.Equal(t, "Corporal", entry.NewRankName)
	assert.Equal(t, int64(7), entry.AttendanceDeltaSinceLastRank)
}

// Delta is floored at zero when the stored snapshot exceeds the current total
// (e.g., attendance rows were purged upstream).
func TestAssignRankDeltaNeverNegative(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	private := seedRank(t, db, "Private", 0, nil, false)
	corporal := seedRank(t, db, "Corporal", 1, nil, false)
	user := seedRosterUser(t, db, "carol")

	seedAttendance(t, db, user.ExternalUserID, 10)
	_, err := svc.AssignRank(user.ExternalUserID, private.ID, models.TriggerAdmin, nil)
	require.NoError(t, err)

	require.NoError(t, db.Where("external_user_id = ?", user.ExternalUserID).
		Delete(&models.AttendanceRecord{}).Error)
	seedAttendance(t, db, user.ExternalUserID, 4)

	state, err := svc.AssignRank(user.ExternalUserID, corporal.ID, models.TriggerAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), state.AttendanceSinceLastRank)

	page, err := NewHistoryService(db).Page(user.ExternalUserID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Entries[0].AttendanceDeltaSinceLastRank)
}

func TestAssignRankUnknownRank(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)
	user := seedRosterUser(t, db, "dave")

	_, err := svc.AssignRank(user.ExternalUserID, "00000000-0000-0000-0000-000000000000", models.TriggerAdmin, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), historyCount(t, db, user.ExternalUserID))
}

func TestToggleRetiredCreatesStateOnFirstCall(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)
	user := seedRosterUser(t, db, "erin")

	state, err := svc.ToggleRetired(user.ExternalUserID)
	require.NoError(t, err)
	assert.True(t, state.Retired)
	assert.Nil(t, state.CurrentRankID)

	state, err = svc.ToggleRetired(user.ExternalUserID)
	require.NoError(t, err)
	assert.False(t, state.Retired)
}

func TestToggleInterviewDone(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)
	user := seedRosterUser(t, db, "frank")

	state, err := svc.ToggleInterviewDone(user.ExternalUserID)
	require.NoError(t, err)
	assert.True(t, state.InterviewDone)
	assert.False(t, state.Retired)

	state, err = svc.ToggleInterviewDone(user.ExternalUserID)
	require.NoError(t, err)
	assert.False(t, state.InterviewDone)
}

func TestBulkAssignRankRejectsWholeBatchOnUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	rank := seedRank(t, db, "Corporal", 1, nil, false)
	u1 := seedRosterUser(t, db, "gwen")
	u3 := seedRosterUser(t, db, "hank")

	err := svc.BulkAssignRank(
		[]string{u1.ExternalUserID, "missing-user", u3.ExternalUserID},
		rank.ID, models.TriggerAdmin, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	// Atomic: no member got the rank and no history was written.
	assert.Equal(t, int64(0), historyCount(t, db, u1.ExternalUserID))
	assert.Equal(t, int64(0), historyCount(t, db, u3.ExternalUserID))

	var states int64
	require.NoError(t, db.Model(&models.UserRankState{}).Count(&states).Error)
	assert.Equal(t, int64(0), states)
}

func TestBulkAssignRankAppliesToAll(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	rank := seedRank(t, db, "Corporal", 1, nil, false)
	u1 := seedRosterUser(t, db, "ivan")
	u2 := seedRosterUser(t, db, "judy")

	err := svc.BulkAssignRank([]string{u1.ExternalUserID, u2.ExternalUserID},
		rank.ID, models.TriggerAdmin, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), historyCount(t, db, u1.ExternalUserID))
	assert.Equal(t, int64(1), historyCount(t, db, u2.ExternalUserID))

	for _, uid := range []string{u1.ExternalUserID, u2.ExternalUserID} {
		state, err := svc.GetState(uid)
		require.NoError(t, err)
		require.NotNil(t, state.CurrentRankID)
		assert.Equal(t, rank.ID, *state.CurrentRankID)
	}
}

func TestBulkAssignRankEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	err := svc.BulkAssignRank(nil, "whatever", models.TriggerAdmin, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetStateZeroValueForUnknownMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	state, err := svc.GetState("never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", state.ExternalUserID)
	assert.Nil(t, state.CurrentRankID)
	assert.False(t, state.Retired)
	assert.Equal(t, int64(0), state.AttendanceSinceLastRank)
}

func TestListMembersIncludesUnrankedMembers(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankStateService(db)

	rank := seedRank(t, db, "Corporal", 1, nil, false)
	ranked := seedRosterUser(t, db, "kim")
	unranked := seedRosterUser(t, db, "leo")

	_, err := svc.AssignRank(ranked.ExternalUserID, rank.ID, models.TriggerAdmin, nil)
	require.NoError(t, err)

	members, err := svc.ListMembers()
	require.NoError(t, err)
	require.Len(t, members, 2)

	byID := map[string]MemberOverview{}
	for _, m := range members {
		byID[m.ExternalUserID] = m
	}

	require.NotNil(t, byID[ranked.ExternalUserID].RankName)
	assert.Equal(t, "Corporal", *byID[ranked.ExternalUserID].RankName)
	assert.Nil(t, byID[unranked.ExternalUserID].RankName)
	assert.False(t, byID[unranked.ExternalUserID].Retired)
}
