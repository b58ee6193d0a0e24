package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluatePromotionNoThresholdNoTrainings(t *testing.T) {
	result := EvaluatePromotion(0, nil, nil, nil)

	assert.True(t, result.Eligible)
	assert.Empty(t, result.UnmetRequirements)
}

func TestEvaluatePromotionThresholdMet(t *testing.T) {
	result := EvaluatePromotion(7, int64Ptr(5), nil, nil)

	assert.True(t, result.Eligible)
	assert.Empty(t, result.UnmetRequirements)
}

func TestEvaluatePromotionThresholdNotMet(t *testing.T) {
	result := EvaluatePromotion(3, int64Ptr(5), nil, nil)

	assert.False(t, result.Eligible)
	assert.Len(t, result.UnmetRequirements, 1)
	assert.Contains(t, result.UnmetRequirements[0], "attendance 3 of 5")
}

func TestEvaluatePromotionMissingTraining(t *testing.T) {
	required := []RequiredTraining{
		{ID: "t1", Name: "Basic Combat"},
		{ID: "t2", Name: "Field Medic"},
	}
	completed := map[string]bool{"t1": true}

	result := EvaluatePromotion(10, int64Ptr(5), required, completed)

	assert.False(t, result.Eligible)
	assert.Len(t, result.UnmetRequirements, 1)
	assert.Contains(t, result.UnmetRequirements[0], "Field Medic")
}

func TestEvaluatePromotionAllRequirementsMet(t *testing.T) {
	required := []RequiredTraining{{ID: "t1", Name: "Basic Combat"}}
	completed := map[string]bool{"t1": true}

	result := EvaluatePromotion(5, int64Ptr(5), required, completed)

	assert.True(t, result.Eligible)
	assert.Empty(t, result.UnmetRequirements)
}

func TestEvaluatePromotionCollectsAllUnmet(t *testing.T) {
	required := []RequiredTraining{
		{ID: "t1", Name: "Basic Combat"},
		{ID: "t2", Name: "Field Medic"},
	}

	result := EvaluatePromotion(1, int64Ptr(5), required, map[string]bool{})

	assert.False(t, result.Eligible)
	assert.Len(t, result.UnmetRequirements, 3)
}

// Identical inputs must yield identical verdicts across repeated calls.
func TestEvaluatePromotionDeterministic(t *testing.T) {
	required := []RequiredTraining{
		{ID: "t1", Name: "Basic Combat"},
		{ID: "t2", Name: "Field Medic"},
	}
	completed := map[string]bool{"t2": true}

	first := EvaluatePromotion(4, int64Ptr(5), required, completed)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EvaluatePromotion(4, int64Ptr(5), required, completed))
	}
}
