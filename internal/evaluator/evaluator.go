package evaluator

import (
	"pantry-to-plate/internal/catalog"
	"pantry-to-plate/internal/models"

	"go.uber.org/zap"
)

// Evaluator turns one patient profile into a clinical constraint document.
// The catalog is read-only, so a single Evaluator is safe for concurrent
// use across patients; evaluation itself is synchronous and does no I/O.
type Evaluator struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator over a validated catalog.
func NewEvaluator(cat *catalog.Catalog, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		catalog: cat,
		logger:  logger,
	}
}

// Evaluate runs the full pipeline: applicability filter, conflict
// detection, priority resolution, constraint building, and explainability
// annotation. The returned document is complete and internally consistent,
// or the error explains exactly what was missing. Identical inputs always
// produce identical output.
func (e *Evaluator) Evaluate(profile *models.PatientProfile) (*models.ClinicalConstraint, error) {
	app := e.filter(profile)

	// Resolve each nutrient group in catalog-declaration order; that
	// order is the stable output order.
	var resolved []resolvedNutrient
	byNutrient := make(map[string]models.NutrientConstraint)
	var conflicts []models.ConflictRecord
	var warnings []string
	for _, nutrient := range e.catalog.Nutrients {
		rules := app.nutrientRules[nutrient]
		if len(rules) == 0 {
			continue
		}
		res := resolveGroup(nutrient, rules)
		resolved = append(resolved, res)
		if res.conflict != nil {
			conflicts = append(conflicts, *res.conflict)
			e.logger.Info("nutrient conflict resolved",
				zap.String("patient_id", profile.PatientID),
				zap.String("nutrient", nutrient),
				zap.String("winner_rule", res.conflict.WinnerRuleID),
				zap.Int("losers", len(res.conflict.Losers)),
			)
		}
		if res.tieWarning != "" {
			warnings = append(warnings, res.tieWarning)
			e.logger.Warn("priority tie during conflict resolution",
				zap.String("patient_id", profile.PatientID),
				zap.String("nutrient", nutrient),
			)
		}
	}

	nutrients := make([]models.NutrientConstraint, 0, len(resolved))
	for _, res := range resolved {
		nc := buildNutrient(res)
		nc.Citation = citationFor(profile, res.dominant.Source, res.dominant.Predicate)
		nutrients = append(nutrients, nc)
		byNutrient[nc.Nutrient] = nc
	}

	if err := e.checkMandatory(profile, byNutrient); err != nil {
		return nil, err
	}

	protein, weightNote, err := buildProtein(profile, app.proteinRule)
	if err != nil {
		return nil, err
	}
	protein.Citation = citationFor(profile, app.proteinRule.Source, app.proteinRule.Predicate)
	completeness := app.completeness
	if weightNote != "" {
		completeness = append(completeness, weightNote)
	}
	if completeness == nil {
		completeness = []string{}
	}

	prohibited, limited, warning := buildFoodLists(profile, dedupFoods(app.foodRules))

	doc := &models.ClinicalConstraint{
		PatientID:             profile.PatientID,
		MedicalConditions:     activeConditions(profile),
		Protein:               protein,
		Nutrients:             nutrients,
		ProhibitedFoods:       prohibited,
		LimitedFoods:          limited,
		WarningFoods:          warning,
		Conflicts:             emptyIfNilConflicts(conflicts),
		SafetyNotes:           emptyIfNil(app.safetyNotes),
		DataCompletenessNotes: completeness,
		Warnings:              emptyIfNil(warnings),
	}

	if egfr, ok := profile.Lab(models.LabEGFR); ok {
		v := egfr
		doc.EGFR = &v
		stage := e.catalog.StageFor(egfr)
		doc.CKDStage = &stage
	}
	if k, ok := profile.Lab(models.LabSerumPotassium); ok {
		v := k
		doc.SerumPotassium = &v
	}

	e.logger.Debug("clinical constraint generated",
		zap.String("patient_id", profile.PatientID),
		zap.Int("nutrients", len(doc.Nutrients)),
		zap.Int("conflicts", len(doc.Conflicts)),
		zap.Int("prohibited_foods", len(doc.ProhibitedFoods)),
	)

	return doc, nil
}

// activeConditions copies only the active condition flags so the output
// document stays independent of the input profile map.
func activeConditions(profile *models.PatientProfile) map[models.Condition]bool {
	out := make(map[models.Condition]bool)
	for cond, active := range profile.Conditions {
		if active {
			out[cond] = true
		}
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilConflicts(s []models.ConflictRecord) []models.ConflictRecord {
	if s == nil {
		return []models.ConflictRecord{}
	}
	return s
}
