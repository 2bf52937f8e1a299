package catalog

import (
	"testing"

	"pantry-to-plate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cat := Default()
	require.NoError(t, cat.Validate())
}

func TestDefault_NutrientDeclarationOrder(t *testing.T) {
	cat := Default()
	assert.Equal(t,
		[]string{"sodium", "potassium", "phosphorus", "carbohydrates", "saturated_fat"},
		cat.Nutrients,
	)
}

func TestDefault_PriorityRanksAreExplicit(t *testing.T) {
	// The hierarchy must hold by numeric rank, not declaration position.
	assert.Less(t, int(models.PriorityCriticalRenal), int(models.PriorityCriticalCardiac))
	assert.Less(t, int(models.PriorityCriticalCardiac), int(models.PriorityHighMetabolic))
	assert.Less(t, int(models.PriorityHighMetabolic), int(models.PriorityMediumLipid))
	assert.Less(t, int(models.PriorityMediumLipid), int(models.PriorityLowEndocrine))
	assert.Less(t, int(models.PriorityLowEndocrine), int(models.PriorityGeneralHealth))
}

func TestStageFor(t *testing.T) {
	cat := Default()

	tests := []struct {
		egfr float64
		want string
	}{
		{95, "Stage 1-2 (Mild or Normal)"},
		{90, "Stage 1-2 (Mild or Normal)"},
		{75, "Stage 2 (Mild)"},
		{59.9, "Stage 3a (Moderate)"},
		{52, "Stage 3a (Moderate)"},
		{45, "Stage 3a (Moderate)"},
		{44.9, "Stage 3b (Moderate-Severe)"},
		{30, "Stage 3b (Moderate-Severe)"},
		{22, "Stage 4 (Severe)"},
		{15, "Stage 4 (Severe)"},
		{8, "Stage 5 (Kidney Failure)"},
		{0, "Stage 5 (Kidney Failure)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cat.StageFor(tt.egfr), "eGFR %.1f", tt.egfr)
	}
}

func TestDefault_EveryRuleHasRationaleAndSource(t *testing.T) {
	cat := Default()
	for _, r := range cat.NutrientRules {
		assert.NotEmpty(t, r.Rationale, "rule %s", r.RuleID)
		assert.NotEmpty(t, r.Source, "rule %s", r.RuleID)
	}
	for _, fr := range cat.FoodRules {
		assert.NotEmpty(t, fr.Reason, "rule %s", fr.RuleID)
		assert.NotEmpty(t, fr.Source, "rule %s", fr.RuleID)
	}
}

func TestDefault_ProteinFallbackIsUnconditional(t *testing.T) {
	cat := Default()
	require.NotEmpty(t, cat.ProteinRules)

	last := cat.ProteinRules[len(cat.ProteinRules)-1]
	assert.Empty(t, last.Predicate.AllConditions)
	assert.Empty(t, last.Predicate.AnyConditions)
	assert.Empty(t, last.Predicate.Labs)
}
