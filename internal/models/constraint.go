package models

// Citation ties a limit or restriction back to the evidence that triggered
// it: the guideline label and, when the winning rule's predicate referenced
// a lab, that lab and its reading.
type Citation struct {
	Source   string   `json:"source"`
	LabKey   *LabKey  `json:"lab_key,omitempty"`
	LabValue *float64 `json:"lab_value,omitempty"`
}

// NutrientConstraint is the resolved per-nutrient limit in the output
// document. Field names are a contract downstream collaborators depend on.
type NutrientConstraint struct {
	Nutrient       string           `json:"nutrient"`
	DailyMax       *float64         `json:"daily_max,omitempty"`
	DailyMin       *float64         `json:"daily_min,omitempty"`
	PerMealMax     *float64         `json:"per_meal_max,omitempty"`
	Unit           string           `json:"unit"`
	Priority       ClinicalPriority `json:"priority"`
	PriorityLabel  string           `json:"priority_label"`
	Source         string           `json:"source"`
	Rationale      string           `json:"rationale"`
	OverrideReason *string          `json:"override_reason,omitempty"`
	Citation       *Citation        `json:"citation,omitempty"`
}

// ProteinTarget is the weight-derived protein range.
type ProteinTarget struct {
	WeightKg    float64   `json:"weight_kg"`
	FactorLow   float64   `json:"factor_low"`
	FactorHigh  float64   `json:"factor_high"`
	DailyMinG   float64   `json:"daily_min_g"`
	DailyMaxG   float64   `json:"daily_max_g"`
	PerMealMinG float64   `json:"per_meal_min_g"`
	PerMealMaxG float64   `json:"per_meal_max_g"`
	Source      string    `json:"source"`
	Rationale   string    `json:"rationale"`
	Citation    *Citation `json:"citation,omitempty"`
}

// FoodRestriction is a resolved food entry in the output document.
type FoodRestriction struct {
	FoodID        string              `json:"food_id"`
	FoodName      string              `json:"food_name"`
	Severity      RestrictionSeverity `json:"severity"`
	Reason        string              `json:"reason"`
	Priority      ClinicalPriority    `json:"priority"`
	PriorityLabel string              `json:"priority_label"`
	Alternatives  []string            `json:"alternatives,omitempty"`
	Temporal      *TemporalSeparation `json:"temporal,omitempty"`
	Citation      *Citation           `json:"citation,omitempty"`
}

// LosingRule records a rule displaced during conflict resolution.
type LosingRule struct {
	RuleID    string           `json:"rule_id"`
	DailyMax  *float64         `json:"daily_max,omitempty"`
	DailyMin  *float64         `json:"daily_min,omitempty"`
	Priority  ClinicalPriority `json:"priority"`
	Source    string           `json:"source"`
	Rationale string           `json:"rationale"`
}

// ConflictRecord documents one resolved direction clash: two or more
// applicable rules for the same nutrient whose bounds cannot be
// simultaneously satisfied.
type ConflictRecord struct {
	Nutrient       string           `json:"nutrient"`
	WinnerRuleID   string           `json:"winner_rule_id"`
	WinnerDailyMax *float64         `json:"winner_daily_max,omitempty"`
	WinnerDailyMin *float64         `json:"winner_daily_min,omitempty"`
	WinnerPriority ClinicalPriority `json:"winner_priority"`
	WinnerSource   string           `json:"winner_source"`
	Losers         []LosingRule     `json:"losers"`
	OverrideReason string           `json:"override_reason"`
	TieBreak       bool             `json:"tie_break,omitempty"`
}

// ClinicalConstraint is the complete constraint document handed to the
// pantry-validation and recipe-adaptation collaborators. Immutable after
// construction; a caller receives either a complete, internally consistent
// document or an explicit error. It carries no timestamp so that the same
// profile and catalog always serialize byte-identically.
type ClinicalConstraint struct {
	PatientID         string             `json:"patient_id"`
	MedicalConditions map[Condition]bool `json:"medical_conditions"`
	CKDStage          *string            `json:"ckd_stage,omitempty"`
	EGFR              *float64           `json:"egfr,omitempty"`
	SerumPotassium    *float64           `json:"serum_potassium,omitempty"`

	Protein   ProteinTarget        `json:"protein"`
	Nutrients []NutrientConstraint `json:"nutrients"`

	ProhibitedFoods []FoodRestriction `json:"prohibited_foods"`
	LimitedFoods    []FoodRestriction `json:"limited_foods"`
	WarningFoods    []FoodRestriction `json:"warning_foods"`

	Conflicts []ConflictRecord `json:"conflicts"`

	SafetyNotes           []string `json:"safety_notes"`
	DataCompletenessNotes []string `json:"data_completeness_notes"`
	Warnings              []string `json:"warnings"`
}
