package evaluator

import (
	"fmt"
	"math"
	"sort"

	"pantry-to-plate/internal/models"
)

// mealCount is the fixed per-day meal count used to derive per-meal shares.
const mealCount = 3

// referenceWeightKg substitutes for a missing body weight.
const referenceWeightKg = 70.0

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// buildProtein derives the daily and per-meal protein range from body
// weight and the matched factor rule. Both ends of the daily range divide
// independently by the meal count. A recorded weight must be positive; a
// zero or negative value would yield a meaningless protein range, so it is
// a data-completeness failure rather than a substitutable gap.
func buildProtein(profile *models.PatientProfile, rule models.ProteinFactorRule) (models.ProteinTarget, string, error) {
	weight := referenceWeightKg
	note := ""
	if profile.WeightKg != nil {
		if *profile.WeightKg <= 0 {
			return models.ProteinTarget{}, "", &models.DataCompletenessError{
				PatientID: profile.PatientID,
				Missing:   []string{fmt.Sprintf("weight_kg (non-positive value %.1f)", *profile.WeightKg)},
			}
		}
		weight = *profile.WeightKg
	} else {
		note = fmt.Sprintf("weight unavailable; using reference weight (%.1f kg)", referenceWeightKg)
	}

	dailyMin := round1(weight * rule.FactorLow)
	dailyMax := round1(weight * rule.FactorHigh)

	rationale := rule.Rationale
	if note != "" {
		rationale = rationale + " (" + note + ")"
	}

	return models.ProteinTarget{
		WeightKg:    weight,
		FactorLow:   rule.FactorLow,
		FactorHigh:  rule.FactorHigh,
		DailyMinG:   dailyMin,
		DailyMaxG:   dailyMax,
		PerMealMinG: round1(dailyMin / mealCount),
		PerMealMaxG: round1(dailyMax / mealCount),
		Source:      rule.Source,
		Rationale:   rationale,
	}, note, nil
}

// buildNutrient turns one resolved group into its output constraint,
// deriving the per-meal cap from the daily cap when no rule set one.
func buildNutrient(res resolvedNutrient) models.NutrientConstraint {
	nc := models.NutrientConstraint{
		Nutrient:      res.nutrient,
		DailyMax:      res.dailyMax,
		DailyMin:      res.dailyMin,
		PerMealMax:    res.perMealMax,
		Unit:          res.unit,
		Priority:      res.dominant.Priority,
		PriorityLabel: res.dominant.Priority.Label(),
		Source:        res.dominant.Source,
		Rationale:     res.dominant.Rationale,
	}
	if nc.PerMealMax == nil && nc.DailyMax != nil {
		derived := round1(*nc.DailyMax / mealCount)
		nc.PerMealMax = &derived
	}
	if res.conflict != nil {
		reason := res.conflict.OverrideReason
		nc.OverrideReason = &reason
	}
	return nc
}

// dedupFoods collapses applicable food rules by food identifier, keeping
// the highest severity (prohibited over limited over warning) and, within
// equal severity, the first-registered rule.
func dedupFoods(rules []models.FoodRestrictionRule) []models.FoodRestrictionRule {
	byFood := make(map[string]models.FoodRestrictionRule)
	var order []string
	for _, fr := range rules {
		existing, ok := byFood[fr.FoodID]
		if !ok {
			byFood[fr.FoodID] = fr
			order = append(order, fr.FoodID)
			continue
		}
		if models.SeverityRank(fr.Severity) < models.SeverityRank(existing.Severity) {
			byFood[fr.FoodID] = fr
		}
	}
	out := make([]models.FoodRestrictionRule, 0, len(order))
	for _, id := range order {
		out = append(out, byFood[id])
	}
	return out
}

// checkMandatory verifies that every nutrient mandated by an active
// condition received at least one numeric bound. A gap is a
// data-completeness error, never a silent omission.
func (e *Evaluator) checkMandatory(profile *models.PatientProfile, constraints map[string]models.NutrientConstraint) error {
	missingSet := make(map[string]bool)
	for cond, nutrients := range e.catalog.Mandatory {
		if !profile.HasCondition(cond) {
			continue
		}
		for _, n := range nutrients {
			nc, ok := constraints[n]
			if !ok || (nc.DailyMax == nil && nc.DailyMin == nil && nc.PerMealMax == nil) {
				missingSet[fmt.Sprintf("%s limit (required for %s)", n, cond)] = true
			}
		}
	}
	if len(missingSet) == 0 {
		return nil
	}
	missing := make([]string, 0, len(missingSet))
	for m := range missingSet {
		missing = append(missing, m)
	}
	sort.Strings(missing)
	return &models.DataCompletenessError{PatientID: profile.PatientID, Missing: missing}
}
