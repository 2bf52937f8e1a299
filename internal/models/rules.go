package models

// ClinicalPriority is the closed guideline hierarchy. Lower rank wins a
// conflict. The numeric rank is explicit so reordering catalog entries can
// never change resolution behavior.
type ClinicalPriority int

const (
	PriorityCriticalRenal   ClinicalPriority = 1 // hyperkalemia, uremia
	PriorityCriticalCardiac ClinicalPriority = 2 // hypertensive crisis
	PriorityHighMetabolic   ClinicalPriority = 3 // diabetic complications
	PriorityMediumLipid     ClinicalPriority = 4 // atherosclerosis risk
	PriorityLowEndocrine    ClinicalPriority = 5 // medication timing
	PriorityGeneralHealth   ClinicalPriority = 6 // general wellness
)

// Label returns the stable string form used in the JSON contract.
func (p ClinicalPriority) Label() string {
	switch p {
	case PriorityCriticalRenal:
		return "critical_renal"
	case PriorityCriticalCardiac:
		return "critical_cardiac"
	case PriorityHighMetabolic:
		return "high_metabolic"
	case PriorityMediumLipid:
		return "medium_lipid"
	case PriorityLowEndocrine:
		return "low_endocrine"
	case PriorityGeneralHealth:
		return "general_health"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the enumerated ranks.
func (p ClinicalPriority) Valid() bool {
	return p >= PriorityCriticalRenal && p <= PriorityGeneralHealth
}

// CompareOp is a comparison operator in a lab predicate.
type CompareOp string

const (
	OpLT CompareOp = "lt"
	OpLE CompareOp = "le"
	OpGT CompareOp = "gt"
	OpGE CompareOp = "ge"
	OpEQ CompareOp = "eq"
)

// LabCondition is one typed lab comparison, e.g. egfr < 60.
type LabCondition struct {
	Key   LabKey    `yaml:"key" json:"key"`
	Op    CompareOp `yaml:"op" json:"op"`
	Value float64   `yaml:"value" json:"value"`
}

// Holds evaluates the comparison against a present reading.
func (lc LabCondition) Holds(reading float64) bool {
	switch lc.Op {
	case OpLT:
		return reading < lc.Value
	case OpLE:
		return reading <= lc.Value
	case OpGT:
		return reading > lc.Value
	case OpGE:
		return reading >= lc.Value
	case OpEQ:
		return reading == lc.Value
	default:
		return false
	}
}

// Predicate is a declarative applicability test over a patient profile:
// every entry of AllConditions must be active, at least one of
// AnyConditions (when non-empty) must be active, and every lab comparison
// must hold. A comparison against a missing lab makes the predicate false
// and reports the missing key instead of failing.
type Predicate struct {
	AllConditions []Condition    `yaml:"all_conditions,omitempty" json:"all_conditions,omitempty"`
	AnyConditions []Condition    `yaml:"any_conditions,omitempty" json:"any_conditions,omitempty"`
	Labs          []LabCondition `yaml:"labs,omitempty" json:"labs,omitempty"`
}

// Evaluate returns whether the predicate holds and which referenced labs
// were absent from the profile.
func (pr Predicate) Evaluate(profile *PatientProfile) (bool, []LabKey) {
	for _, c := range pr.AllConditions {
		if !profile.HasCondition(c) {
			return false, nil
		}
	}
	if len(pr.AnyConditions) > 0 {
		matched := false
		for _, c := range pr.AnyConditions {
			if profile.HasCondition(c) {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	var missing []LabKey
	holds := true
	for _, lc := range pr.Labs {
		reading, ok := profile.Lab(lc.Key)
		if !ok {
			missing = append(missing, lc.Key)
			holds = false
			continue
		}
		if !lc.Holds(reading) {
			holds = false
		}
	}
	return holds, missing
}

// LimitKind classifies the shape of a nutrient rule's bound.
type LimitKind string

const (
	LimitMax   LimitKind = "max"
	LimitMin   LimitKind = "min"
	LimitRange LimitKind = "range"
)

// NutrientRule is one published guideline limit for one nutrient.
type NutrientRule struct {
	RuleID   string    `yaml:"rule_id" json:"rule_id"`
	Nutrient string    `yaml:"nutrient" json:"nutrient"`
	Kind     LimitKind `yaml:"kind" json:"kind"`

	// Daily bounds. Nil means unbounded in that direction.
	DailyMax *float64 `yaml:"daily_max,omitempty" json:"daily_max,omitempty"`
	DailyMin *float64 `yaml:"daily_min,omitempty" json:"daily_min,omitempty"`

	// PerMealMax overrides the default daily/3 division when set.
	PerMealMax *float64 `yaml:"per_meal_max,omitempty" json:"per_meal_max,omitempty"`

	Unit      string           `yaml:"unit" json:"unit"`
	Predicate Predicate        `yaml:"predicate" json:"predicate"`
	Priority  ClinicalPriority `yaml:"priority" json:"priority"`
	Source    string           `yaml:"source" json:"source"`
	Rationale string           `yaml:"rationale" json:"rationale"`
}

// RestrictionSeverity orders food restrictions from hardest to softest.
type RestrictionSeverity string

const (
	SeverityProhibited RestrictionSeverity = "prohibited"
	SeverityLimited    RestrictionSeverity = "limited"
	SeverityWarning    RestrictionSeverity = "warning"
)

// SeverityRank maps severity to its output ordering (prohibited first).
func SeverityRank(s RestrictionSeverity) int {
	switch s {
	case SeverityProhibited:
		return 0
	case SeverityLimited:
		return 1
	case SeverityWarning:
		return 2
	default:
		return 3
	}
}

// TemporalSeparation is a minimum time-separation requirement between a
// food and another substance. Informational metadata only: meal-timing
// enforcement is out of scope.
type TemporalSeparation struct {
	Substance   string `yaml:"substance" json:"substance"`
	MinGapHours int    `yaml:"min_gap_hours" json:"min_gap_hours"`
	Note        string `yaml:"note,omitempty" json:"note,omitempty"`
}

// FoodRestrictionRule restricts a food when its predicate holds.
type FoodRestrictionRule struct {
	RuleID       string              `yaml:"rule_id" json:"rule_id"`
	FoodID       string              `yaml:"food_id" json:"food_id"`
	FoodName     string              `yaml:"food_name" json:"food_name"`
	Severity     RestrictionSeverity `yaml:"severity" json:"severity"`
	Predicate    Predicate           `yaml:"predicate" json:"predicate"`
	Priority     ClinicalPriority    `yaml:"priority" json:"priority"`
	Source       string              `yaml:"source" json:"source"`
	Reason       string              `yaml:"reason" json:"reason"`
	Alternatives []string            `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
	Temporal     *TemporalSeparation `yaml:"temporal,omitempty" json:"temporal,omitempty"`
}

// ProteinFactorRule maps a condition combination to a g/kg/day factor range.
type ProteinFactorRule struct {
	RuleID     string    `yaml:"rule_id" json:"rule_id"`
	Predicate  Predicate `yaml:"predicate" json:"predicate"`
	FactorLow  float64   `yaml:"factor_low" json:"factor_low"`
	FactorHigh float64   `yaml:"factor_high" json:"factor_high"`
	Source     string    `yaml:"source" json:"source"`
	Rationale  string    `yaml:"rationale" json:"rationale"`
}

// SafetyNoteRule emits a clinical safety note when its predicate holds.
type SafetyNoteRule struct {
	RuleID    string    `yaml:"rule_id" json:"rule_id"`
	Predicate Predicate `yaml:"predicate" json:"predicate"`
	Note      string    `yaml:"note" json:"note"`
}
