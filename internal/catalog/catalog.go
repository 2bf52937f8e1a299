package catalog

import (
	"pantry-to-plate/internal/models"
)

// Catalog is the static, declarative rule set the evaluator runs against.
// It is loaded once per process, validated, and never mutated afterwards,
// so it is safe to share across concurrent evaluations.
type Catalog struct {
	// Nutrients in declaration order. This order is the stable output
	// order of the constraint document.
	Nutrients []string `yaml:"nutrients"`

	NutrientRules []models.NutrientRule        `yaml:"nutrient_rules"`
	FoodRules     []models.FoodRestrictionRule `yaml:"food_rules"`

	// ProteinRules are checked in order; the first matching predicate
	// supplies the g/kg/day factor range. The last entry must be an
	// unconditional default.
	ProteinRules []models.ProteinFactorRule `yaml:"protein_rules"`

	SafetyNotes []models.SafetyNoteRule `yaml:"safety_notes"`

	// Mandatory maps each condition to the nutrients that must carry at
	// least one numeric bound whenever the condition is active.
	Mandatory map[models.Condition][]string `yaml:"mandatory"`

	// Stages is the KDIGO eGFR threshold table, highest floor first.
	Stages []CKDStageBand `yaml:"stages"`
}

// CKDStageBand labels every eGFR at or above MinEGFR (until a higher band
// claims it). Display and citation only; rule applicability is gated by the
// eGFR thresholds encoded in rule predicates.
type CKDStageBand struct {
	MinEGFR float64 `yaml:"min_egfr" json:"min_egfr"`
	Label   string  `yaml:"label" json:"label"`
}

// StageFor returns the CKD stage label for an eGFR reading.
func (c *Catalog) StageFor(egfr float64) string {
	for _, band := range c.Stages {
		if egfr >= band.MinEGFR {
			return band.Label
		}
	}
	if len(c.Stages) == 0 {
		return ""
	}
	return c.Stages[len(c.Stages)-1].Label
}

func ptr(f float64) *float64 {
	return &f
}

// Default returns the built-in catalog encoding the KDOQI, DASH, AHA, ADA
// and NCEP reference limits. This is the authoritative source of truth when
// no external catalog file is configured.
func Default() *Catalog {
	return &Catalog{
		Nutrients: []string{"sodium", "potassium", "phosphorus", "carbohydrates", "saturated_fat"},

		NutrientRules: []models.NutrientRule{
			// ===== SODIUM (mg/day) =====
			{
				RuleID: "sodium_general_dri", Nutrient: "sodium", Kind: models.LimitMax,
				DailyMax: ptr(2300), PerMealMax: ptr(750), Unit: "mg",
				Priority: models.PriorityGeneralHealth, Source: "DRI",
				Rationale: "General population sodium recommendation",
			},
			{
				RuleID: "sodium_htn_aha", Nutrient: "sodium", Kind: models.LimitMax,
				DailyMax: ptr(1500), PerMealMax: ptr(500), Unit: "mg",
				Predicate: models.Predicate{AllConditions: []models.Condition{models.ConditionHypertension}},
				Priority:  models.PriorityCriticalCardiac, Source: "AHA",
				Rationale: "HTN: sodium restriction for blood pressure control",
			},
			{
				RuleID: "sodium_ckd_kdoqi", Nutrient: "sodium", Kind: models.LimitMax,
				DailyMax: ptr(2000), PerMealMax: ptr(650), Unit: "mg",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Rationale: "CKD Stage 3-5: moderate sodium restriction",
			},

			// ===== POTASSIUM (mg/day) =====
			// The DASH floor and the KDOQI cap are the canonical direction
			// clash; renal safety wins by priority rank.
			{
				RuleID: "potassium_general_dri", Nutrient: "potassium", Kind: models.LimitMax,
				DailyMax: ptr(4700), PerMealMax: ptr(1500), Unit: "mg",
				Priority: models.PriorityGeneralHealth, Source: "DRI",
				Rationale: "General population potassium recommendation",
			},
			{
				RuleID: "potassium_htn_dash", Nutrient: "potassium", Kind: models.LimitMin,
				DailyMin: ptr(4700), Unit: "mg",
				Predicate: models.Predicate{AllConditions: []models.Condition{models.ConditionHypertension}},
				Priority:  models.PriorityCriticalCardiac, Source: "DASH",
				Rationale: "HTN: DASH diet encourages high potassium for blood pressure control",
			},
			{
				RuleID: "potassium_ckd_cap", Nutrient: "potassium", Kind: models.LimitMax,
				DailyMax: ptr(2000), PerMealMax: ptr(650), Unit: "mg",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Rationale: "CKD Stage 3-5: strict potassium restriction to prevent hyperkalemia",
			},
			{
				RuleID: "potassium_hyperkalemia_cap", Nutrient: "potassium", Kind: models.LimitMax,
				DailyMax: ptr(1500), PerMealMax: ptr(500), Unit: "mg",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs: []models.LabCondition{
						{Key: models.LabEGFR, Op: models.OpLT, Value: 60},
						{Key: models.LabSerumPotassium, Op: models.OpGT, Value: 5.0},
					},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Rationale: "Elevated serum potassium: tightened restriction to reduce arrhythmia risk",
			},

			// ===== PHOSPHORUS (mg/day) =====
			{
				RuleID: "phosphorus_general_dri", Nutrient: "phosphorus", Kind: models.LimitMax,
				DailyMax: ptr(1250), PerMealMax: ptr(415), Unit: "mg",
				Priority: models.PriorityGeneralHealth, Source: "DRI",
				Rationale: "General population phosphorus recommendation",
			},
			{
				RuleID: "phosphorus_ckd3", Nutrient: "phosphorus", Kind: models.LimitMax,
				DailyMax: ptr(1000), PerMealMax: ptr(330), Unit: "mg",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs: []models.LabCondition{
						{Key: models.LabEGFR, Op: models.OpLT, Value: 60},
						{Key: models.LabEGFR, Op: models.OpGE, Value: 30},
					},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Rationale: "CKD Stage 3: moderate phosphorus restriction",
			},
			{
				RuleID: "phosphorus_ckd45", Nutrient: "phosphorus", Kind: models.LimitMax,
				DailyMax: ptr(800), PerMealMax: ptr(265), Unit: "mg",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 30}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Rationale: "CKD Stage 4-5: strict phosphorus restriction to prevent bone disease",
			},

			// ===== CARBOHYDRATES (g/meal) =====
			{
				RuleID: "carbohydrates_t2dm_ada", Nutrient: "carbohydrates", Kind: models.LimitMax,
				PerMealMax: ptr(60), Unit: "g",
				Predicate: models.Predicate{AllConditions: []models.Condition{models.ConditionType2Diabetes}},
				Priority:  models.PriorityHighMetabolic, Source: "ADA",
				Rationale: "Diabetes: distribute carbohydrates evenly across meals, prefer low GI",
			},

			// ===== SATURATED FAT (g/day) =====
			{
				RuleID: "satfat_general", Nutrient: "saturated_fat", Kind: models.LimitMax,
				DailyMax: ptr(20), PerMealMax: ptr(7), Unit: "g",
				Priority: models.PriorityGeneralHealth, Source: "DRI",
				Rationale: "General population saturated fat recommendation",
			},
			{
				RuleID: "satfat_dyslipidemia_ncep", Nutrient: "saturated_fat", Kind: models.LimitMax,
				DailyMax: ptr(15), PerMealMax: ptr(5), Unit: "g",
				Predicate: models.Predicate{AllConditions: []models.Condition{models.ConditionDyslipidemia}},
				Priority:  models.PriorityMediumLipid, Source: "NCEP/AHA",
				Rationale: "Dyslipidemia: saturated fat restriction to reduce LDL and CVD risk",
			},
		},

		FoodRules: []models.FoodRestrictionRule{
			{
				RuleID: "potatoes_htn", FoodID: "potatoes", FoodName: "Potatoes (all varieties)",
				Severity:  models.SeverityProhibited,
				Predicate: models.Predicate{AllConditions: []models.Condition{models.ConditionHypertension}},
				Priority:  models.PriorityCriticalCardiac, Source: "AHA",
				Reason:       "High potassium and typically prepared with high sodium",
				Alternatives: []string{"cauliflower", "turnips", "radishes"},
			},
			{
				RuleID: "potatoes_ckd", FoodID: "potatoes", FoodName: "Potatoes (all varieties)",
				Severity: models.SeverityProhibited,
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Reason:       "High potassium content (425 mg/100g); CKD Stage 3-5 requires potassium restriction",
				Alternatives: []string{"cauliflower", "turnips", "radishes"},
			},
			{
				RuleID: "sweet_potatoes_ckd", FoodID: "sweet_potatoes", FoodName: "Sweet Potatoes",
				Severity: models.SeverityProhibited,
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Reason:       "Very high potassium (475 mg/100g)",
				Alternatives: []string{"butternut_squash", "carrots"},
			},
			{
				RuleID: "bananas_ckd", FoodID: "bananas", FoodName: "Bananas",
				Severity: models.SeverityProhibited,
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Reason:       "High potassium (358 mg/100g)",
				Alternatives: []string{"berries", "apples", "grapes"},
			},
			{
				RuleID: "oranges_ckd", FoodID: "oranges", FoodName: "Oranges",
				Severity: models.SeverityLimited,
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Reason:       "Moderate potassium (181 mg/100g); small portions only",
				Alternatives: []string{"lemons", "limes"},
			},
			{
				RuleID: "tomatoes_ckd", FoodID: "tomatoes", FoodName: "Tomatoes",
				Severity: models.SeverityLimited,
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Reason:       "Moderate potassium (237 mg/100g); limit to <50g per meal",
				Alternatives: []string{"cucumber", "bell_peppers"},
			},
			{
				RuleID: "spinach_ckd", FoodID: "spinach", FoodName: "Spinach",
				Severity: models.SeverityLimited,
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				Priority: models.PriorityCriticalRenal, Source: "KDOQI",
				Reason:       "Very high potassium (558 mg/100g); limit to <30g per meal",
				Alternatives: []string{"lettuce", "bok_choy"},
			},
			{
				RuleID: "soy_levothyroxine", FoodID: "soy", FoodName: "Soy Products (tofu, soy milk, edamame)",
				Severity:  models.SeverityWarning,
				Predicate: models.Predicate{AllConditions: []models.Condition{models.ConditionHypothyroidism}},
				Priority:  models.PriorityLowEndocrine, Source: "ATA",
				Reason:       "Soy interferes with levothyroxine absorption (reduces efficacy by up to 50%)",
				Alternatives: []string{"almond_milk", "oat_milk", "chicken", "fish"},
				Temporal: &models.TemporalSeparation{
					Substance:   "levothyroxine",
					MinGapHours: 4,
					Note:        "Consume at least 4 hours after levothyroxine dose",
				},
			},
			{
				RuleID: "cabbage_iodine", FoodID: "cabbage", FoodName: "Cabbage",
				Severity: models.SeverityWarning,
				Predicate: models.Predicate{
					Labs: []models.LabCondition{{Key: models.LabIodineDeficiency, Op: models.OpGE, Value: 1}},
				},
				Priority: models.PriorityLowEndocrine, Source: "ATA",
				Reason:   "Goitrogenic effect is significant only with confirmed iodine deficiency",
			},
			{
				RuleID: "broccoli_iodine", FoodID: "broccoli", FoodName: "Broccoli",
				Severity: models.SeverityWarning,
				Predicate: models.Predicate{
					Labs: []models.LabCondition{{Key: models.LabIodineDeficiency, Op: models.OpGE, Value: 1}},
				},
				Priority: models.PriorityLowEndocrine, Source: "ATA",
				Reason:   "Goitrogenic effect is significant only with confirmed iodine deficiency",
			},
		},

		ProteinRules: []models.ProteinFactorRule{
			{
				RuleID: "protein_ckd_dm",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD, models.ConditionType2Diabetes},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 60}},
				},
				FactorLow: 0.6, FactorHigh: 0.8, Source: "KDOQI",
				Rationale: "CKD with diabetes: moderate protein restriction (0.6-0.8 g/kg/day) to slow CKD progression while maintaining adequate nutrition",
			},
			{
				RuleID: "protein_ckd_advanced",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 45}},
				},
				FactorLow: 0.6, FactorHigh: 0.75, Source: "KDOQI",
				Rationale: "Advanced CKD (Stage 3b-5): protein restriction (0.6-0.75 g/kg/day) to reduce uremic toxins",
			},
			{
				RuleID:    "protein_general",
				FactorLow: 0.8, FactorHigh: 1.0, Source: "DRI",
				Rationale: "Standard protein intake (0.8-1.0 g/kg/day)",
			},
		},

		SafetyNotes: []models.SafetyNoteRule{
			{
				RuleID: "advanced_ckd_note",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionCKD},
					Labs:          []models.LabCondition{{Key: models.LabEGFR, Op: models.OpLT, Value: 30}},
				},
				Note: "CRITICAL: Advanced CKD (Stage 4-5). Strict dietary compliance essential. Monitor potassium, phosphorus, and fluid status closely.",
			},
			{
				RuleID: "hyperkalemia_note",
				Predicate: models.Predicate{
					Labs: []models.LabCondition{{Key: models.LabSerumPotassium, Op: models.OpGT, Value: 5.5}},
				},
				Note: "ALERT: Elevated serum potassium. Risk of cardiac arrhythmia; immediate potassium restriction required.",
			},
			{
				RuleID: "glycemic_note",
				Predicate: models.Predicate{
					AllConditions: []models.Condition{models.ConditionType2Diabetes},
					Labs:          []models.LabCondition{{Key: models.LabHbA1c, Op: models.OpGT, Value: 9.0}},
				},
				Note: "ALERT: Poor glycemic control (HbA1c > 9.0%). Strict carbohydrate management and meal timing critical.",
			},
		},

		Mandatory: map[models.Condition][]string{
			models.ConditionCKD:           {"potassium", "phosphorus", "sodium"},
			models.ConditionHypertension:  {"sodium", "potassium"},
			models.ConditionType2Diabetes: {"carbohydrates"},
			models.ConditionDyslipidemia:  {"saturated_fat"},
		},

		Stages: []CKDStageBand{
			{MinEGFR: 90, Label: "Stage 1-2 (Mild or Normal)"},
			{MinEGFR: 60, Label: "Stage 2 (Mild)"},
			{MinEGFR: 45, Label: "Stage 3a (Moderate)"},
			{MinEGFR: 30, Label: "Stage 3b (Moderate-Severe)"},
			{MinEGFR: 15, Label: "Stage 4 (Severe)"},
			{MinEGFR: 0, Label: "Stage 5 (Kidney Failure)"},
		},
	}
}
