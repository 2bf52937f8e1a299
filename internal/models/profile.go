package models

// Condition is a chronic-disease diagnosis flag on a patient profile.
type Condition string

const (
	ConditionHypertension   Condition = "hypertension"
	ConditionType2Diabetes  Condition = "type2_diabetes"
	ConditionCKD            Condition = "chronic_kidney_disease"
	ConditionDyslipidemia   Condition = "dyslipidemia"
	ConditionHypothyroidism Condition = "hypothyroidism"
)

// KnownConditions lists every condition the catalog may reference.
func KnownConditions() []Condition {
	return []Condition{
		ConditionHypertension,
		ConditionType2Diabetes,
		ConditionCKD,
		ConditionDyslipidemia,
		ConditionHypothyroidism,
	}
}

// LabKey is a recognized laboratory parameter. The set is closed so a
// catalog predicate can never reference a lab by a misspelled name.
type LabKey string

const (
	LabEGFR             LabKey = "egfr"             // mL/min/1.73m2
	LabSerumPotassium   LabKey = "serum_potassium"  // mEq/L
	LabHbA1c            LabKey = "hba1c"            // %
	LabTSH              LabKey = "tsh"              // mIU/L
	LabIodineDeficiency LabKey = "iodine_deficiency" // flag: >= 1 means deficient
	LabLDL              LabKey = "ldl"              // mg/dL
)

// KnownLabKeys lists every lab parameter the catalog may reference.
func KnownLabKeys() []LabKey {
	return []LabKey{
		LabEGFR,
		LabSerumPotassium,
		LabHbA1c,
		LabTSH,
		LabIodineDeficiency,
		LabLDL,
	}
}

// PatientProfile is the materialized view of one patient handed to the
// evaluator. It is never mutated after construction; external I/O
// (extraction, lab lookups) completes before evaluation begins.
type PatientProfile struct {
	PatientID string  `json:"patient_id" db:"patient_id"`
	Age       int     `json:"age" db:"age"`
	Sex       string  `json:"sex" db:"sex"`
	// WeightKg is nil when the extraction found no weight; the builder
	// substitutes the 70.0 kg reference value and records why.
	WeightKg *float64 `json:"weight_kg,omitempty" db:"weight_kg"`

	Conditions map[Condition]bool `json:"conditions"`
	Labs       map[LabKey]float64 `json:"labs"`
}

// HasCondition reports whether the condition is present and active.
func (p *PatientProfile) HasCondition(c Condition) bool {
	return p.Conditions[c]
}

// Lab returns the lab reading and whether it is present.
func (p *PatientProfile) Lab(key LabKey) (float64, bool) {
	v, ok := p.Labs[key]
	return v, ok
}

// LabFlag reports whether a flag-valued lab is present and set.
func (p *PatientProfile) LabFlag(key LabKey) bool {
	v, ok := p.Labs[key]
	return ok && v >= 1
}
