package services

import (
	"fmt"
	"os"
	"strings"
)

// TrainingPolicy controls which training completions count as "completed" when
// checking promotion prerequisites. Defaults exclude hidden trainings and
// lapsed (needs-retraining) completions.
type TrainingPolicy struct {
	CountHidden          bool
	CountNeedsRetraining bool
}

// LoadTrainingPolicy reads the policy toggles from the environment.
// TRAINING_POLICY_COUNT_HIDDEN / TRAINING_POLICY_COUNT_RETRAINING = "true"
func LoadTrainingPolicy() TrainingPolicy {
	return TrainingPolicy{
		CountHidden:          strings.EqualFold(os.Getenv("TRAINING_POLICY_COUNT_HIDDEN"), "true"),
		CountNeedsRetraining: strings.EqualFold(os.Getenv("TRAINING_POLICY_COUNT_RETRAINING"), "true"),
	}
}

// RequiredTraining is the rule engine's view of one training prerequisite.
type RequiredTraining struct {
	ID   string
	Name string
}

// Eligibility is the rule engine's verdict for one candidate promotion.
type Eligibility struct {
	Eligible          bool     `json:"eligible"`
	UnmetRequirements []string `json:"unmet_requirements"`
}

// EvaluatePromotion decides whether a member may move to a target rank.
// Pure function of its inputs: attendance accrued since the last rank change,
// the target's attendance threshold (nil = no threshold), the target's
// required trainings, and the set of training IDs the member has completed.
func EvaluatePromotion(attendanceDelta int64, threshold *int64, required []RequiredTraining, completed map[string]bool) Eligibility {
	result := Eligibility{Eligible: true, UnmetRequirements: []string{}}

	if threshold != nil && attendanceDelta < *threshold {
		result.Eligible = false
		result.UnmetRequirements = append(result.UnmetRequirements,
			fmt.Sprintf("attendance %d of %d required since last rank", attendanceDelta, *threshold))
	}

	for _, tr := range required {
		if !completed[tr.ID] {
			result.Eligible = false
			result.UnmetRequirements = append(result.UnmetRequirements,
				fmt.Sprintf("training not completed: %s", tr.Name))
		}
	}

	return result
}
