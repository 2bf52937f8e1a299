package evaluator

import (
	"testing"

	"pantry-to-plate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	tests := []struct {
		name    string
		a, b    interval
		wantOK  bool
		wantMin *float64
		wantMax *float64
	}{
		{
			name:   "unbounded with max",
			a:      interval{},
			b:      interval{max: floatPtr(2000)},
			wantOK: true, wantMax: floatPtr(2000),
		},
		{
			name:   "two maxima keep the tighter",
			a:      interval{max: floatPtr(4700)},
			b:      interval{max: floatPtr(2000)},
			wantOK: true, wantMax: floatPtr(2000),
		},
		{
			name:   "min below max",
			a:      interval{min: floatPtr(1500)},
			b:      interval{max: floatPtr(2000)},
			wantOK: true, wantMin: floatPtr(1500), wantMax: floatPtr(2000),
		},
		{
			name:   "min above max is empty",
			a:      interval{min: floatPtr(4700)},
			b:      interval{max: floatPtr(2000)},
			wantOK: false,
		},
		{
			name:   "degenerate point interval",
			a:      interval{min: floatPtr(4700)},
			b:      interval{max: floatPtr(4700)},
			wantOK: true, wantMin: floatPtr(4700), wantMax: floatPtr(4700),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intersect(tt.a, tt.b)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			if tt.wantMin == nil {
				assert.Nil(t, got.min)
			} else {
				require.NotNil(t, got.min)
				assert.Equal(t, *tt.wantMin, *got.min)
			}
			if tt.wantMax == nil {
				assert.Nil(t, got.max)
			} else {
				require.NotNil(t, got.max)
				assert.Equal(t, *tt.wantMax, *got.max)
			}
		})
	}
}

func maxRule(id string, max float64, priority models.ClinicalPriority) models.NutrientRule {
	return models.NutrientRule{
		RuleID: id, Nutrient: "potassium", Kind: models.LimitMax,
		DailyMax: floatPtr(max), Unit: "mg",
		Priority: priority, Source: "TEST", Rationale: "test rule " + id,
	}
}

func minRule(id string, min float64, priority models.ClinicalPriority) models.NutrientRule {
	return models.NutrientRule{
		RuleID: id, Nutrient: "potassium", Kind: models.LimitMin,
		DailyMin: floatPtr(min), Unit: "mg",
		Priority: priority, Source: "TEST", Rationale: "test rule " + id,
	}
}

func TestResolveGroup_NoConflictTighterMaxDominates(t *testing.T) {
	res := resolveGroup("potassium", []models.NutrientRule{
		maxRule("general", 4700, models.PriorityGeneralHealth),
		maxRule("renal", 2000, models.PriorityCriticalRenal),
	})

	assert.Nil(t, res.conflict)
	assert.Empty(t, res.tieWarning)
	require.NotNil(t, res.dailyMax)
	assert.Equal(t, 2000.0, *res.dailyMax)
	assert.Equal(t, "renal", res.dominant.RuleID)
}

func TestResolveGroup_DirectionClashResolvedByPriority(t *testing.T) {
	res := resolveGroup("potassium", []models.NutrientRule{
		maxRule("general", 4700, models.PriorityGeneralHealth),
		minRule("dash_floor", 4700, models.PriorityCriticalCardiac),
		maxRule("renal_cap", 2000, models.PriorityCriticalRenal),
	})

	require.NotNil(t, res.conflict)
	assert.Equal(t, "renal_cap", res.conflict.WinnerRuleID)
	require.Len(t, res.conflict.Losers, 1)
	assert.Equal(t, "dash_floor", res.conflict.Losers[0].RuleID)
	assert.NotEmpty(t, res.conflict.OverrideReason)
	assert.Contains(t, res.conflict.OverrideReason, "test rule renal_cap")
	assert.False(t, res.conflict.TieBreak)

	// The compatible general maximum still tightens nothing here; the
	// winner's cap is the effective bound and the floor is gone.
	require.NotNil(t, res.dailyMax)
	assert.Equal(t, 2000.0, *res.dailyMax)
	assert.Nil(t, res.dailyMin)
}

func TestResolveGroup_EqualRankTieIsFlagged(t *testing.T) {
	res := resolveGroup("potassium", []models.NutrientRule{
		maxRule("cap_first", 2000, models.PriorityCriticalRenal),
		minRule("floor_second", 4700, models.PriorityCriticalRenal),
	})

	require.NotNil(t, res.conflict)
	// Deterministic: first-registered rule wins the tie.
	assert.Equal(t, "cap_first", res.conflict.WinnerRuleID)
	assert.True(t, res.conflict.TieBreak)
	assert.NotEmpty(t, res.tieWarning)
	assert.Contains(t, res.tieWarning, "human review")
}

func TestResolveGroup_MinBelowMaxIsNoConflict(t *testing.T) {
	res := resolveGroup("potassium", []models.NutrientRule{
		maxRule("cap", 4700, models.PriorityGeneralHealth),
		minRule("floor", 2000, models.PriorityCriticalCardiac),
	})

	assert.Nil(t, res.conflict)
	require.NotNil(t, res.dailyMax)
	require.NotNil(t, res.dailyMin)
	assert.Equal(t, 4700.0, *res.dailyMax)
	assert.Equal(t, 2000.0, *res.dailyMin)
	// The floor's higher priority makes it the dominant rule.
	assert.Equal(t, "floor", res.dominant.RuleID)
}
