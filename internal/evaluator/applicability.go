package evaluator

import (
	"fmt"

	"pantry-to-plate/internal/models"
)

// applicable holds the catalog subset whose predicates hold for one
// profile, plus the data-completeness notes gathered along the way.
// Selection is a pure function of (profile, catalog).
type applicable struct {
	nutrientRules map[string][]models.NutrientRule // keyed by nutrient, registration order kept
	foodRules     []models.FoodRestrictionRule
	proteinRule   models.ProteinFactorRule
	safetyNotes   []string
	completeness  []string
}

// filter evaluates every catalog predicate against the profile. A
// predicate referencing a missing lab evaluates to false rather than
// failing; the omission is recorded for surfacing on the output document.
func (e *Evaluator) filter(profile *models.PatientProfile) applicable {
	app := applicable{nutrientRules: make(map[string][]models.NutrientRule)}
	seenMissing := make(map[string]bool)

	recordMissing := func(ruleID string, missing []models.LabKey) {
		for _, key := range missing {
			note := fmt.Sprintf("lab %s unavailable; rule %s not applied", key, ruleID)
			if !seenMissing[note] {
				seenMissing[note] = true
				app.completeness = append(app.completeness, note)
			}
		}
	}

	for _, r := range e.catalog.NutrientRules {
		holds, missing := r.Predicate.Evaluate(profile)
		recordMissing(r.RuleID, missing)
		if holds {
			app.nutrientRules[r.Nutrient] = append(app.nutrientRules[r.Nutrient], r)
		}
	}

	for _, fr := range e.catalog.FoodRules {
		holds, missing := fr.Predicate.Evaluate(profile)
		recordMissing(fr.RuleID, missing)
		if holds {
			app.foodRules = append(app.foodRules, fr)
		}
	}

	// First matching protein rule wins; the catalog guarantees the last
	// entry is an unconditional default.
	for _, pr := range e.catalog.ProteinRules {
		holds, missing := pr.Predicate.Evaluate(profile)
		recordMissing(pr.RuleID, missing)
		if holds {
			app.proteinRule = pr
			break
		}
	}

	for _, sn := range e.catalog.SafetyNotes {
		holds, missing := sn.Predicate.Evaluate(profile)
		recordMissing(sn.RuleID, missing)
		if holds {
			app.safetyNotes = append(app.safetyNotes, sn.Note)
		}
	}

	return app
}
