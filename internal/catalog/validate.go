package catalog

import (
	"fmt"
	"sort"

	"pantry-to-plate/internal/models"
)

// Validate checks catalog integrity. Every problem is collected so a
// malformed catalog fails startup with the full list, not just the first
// finding. A nil return means the catalog is safe to evaluate against.
func (c *Catalog) Validate() error {
	var problems []string

	knownConditions := make(map[models.Condition]bool)
	for _, cond := range models.KnownConditions() {
		knownConditions[cond] = true
	}
	knownLabs := make(map[models.LabKey]bool)
	for _, key := range models.KnownLabKeys() {
		knownLabs[key] = true
	}

	declared := make(map[string]bool)
	for _, n := range c.Nutrients {
		if declared[n] {
			problems = append(problems, fmt.Sprintf("nutrient %q declared twice", n))
		}
		declared[n] = true
	}
	if len(c.Nutrients) == 0 {
		problems = append(problems, "no nutrients declared")
	}

	checkPredicate := func(ruleID string, p models.Predicate) {
		for _, cond := range p.AllConditions {
			if !knownConditions[cond] {
				problems = append(problems, fmt.Sprintf("rule %s: unknown condition %q", ruleID, cond))
			}
		}
		for _, cond := range p.AnyConditions {
			if !knownConditions[cond] {
				problems = append(problems, fmt.Sprintf("rule %s: unknown condition %q", ruleID, cond))
			}
		}
		for _, lc := range p.Labs {
			if !knownLabs[lc.Key] {
				problems = append(problems, fmt.Sprintf("rule %s: unknown lab parameter %q", ruleID, lc.Key))
			}
			switch lc.Op {
			case models.OpLT, models.OpLE, models.OpGT, models.OpGE, models.OpEQ:
			default:
				problems = append(problems, fmt.Sprintf("rule %s: unknown comparison operator %q", ruleID, lc.Op))
			}
		}
	}

	seenIDs := make(map[string]bool)
	checkID := func(ruleID string) {
		if ruleID == "" {
			problems = append(problems, "rule with empty rule_id")
			return
		}
		if seenIDs[ruleID] {
			problems = append(problems, fmt.Sprintf("duplicate rule_id %q", ruleID))
		}
		seenIDs[ruleID] = true
	}

	rulesPerNutrient := make(map[string]int)
	unitPerNutrient := make(map[string]string)
	for _, r := range c.NutrientRules {
		checkID(r.RuleID)
		checkPredicate(r.RuleID, r.Predicate)
		if !declared[r.Nutrient] {
			problems = append(problems, fmt.Sprintf("rule %s: nutrient %q is not declared", r.RuleID, r.Nutrient))
		}
		rulesPerNutrient[r.Nutrient]++
		if !r.Priority.Valid() {
			problems = append(problems, fmt.Sprintf("rule %s: invalid priority rank %d", r.RuleID, r.Priority))
		}
		if r.Source == "" {
			problems = append(problems, fmt.Sprintf("rule %s: empty source guideline", r.RuleID))
		}
		if r.Rationale == "" {
			problems = append(problems, fmt.Sprintf("rule %s: empty rationale", r.RuleID))
		}
		if r.Unit == "" {
			problems = append(problems, fmt.Sprintf("rule %s: empty unit", r.RuleID))
		} else if prev, ok := unitPerNutrient[r.Nutrient]; ok && prev != r.Unit {
			problems = append(problems, fmt.Sprintf("rule %s: unit %q disagrees with %q for nutrient %q", r.RuleID, r.Unit, prev, r.Nutrient))
		} else {
			unitPerNutrient[r.Nutrient] = r.Unit
		}
		if r.DailyMax == nil && r.DailyMin == nil && r.PerMealMax == nil {
			problems = append(problems, fmt.Sprintf("rule %s: no bound at all", r.RuleID))
		}
		if r.DailyMax != nil && r.DailyMin != nil && *r.DailyMin > *r.DailyMax {
			problems = append(problems, fmt.Sprintf("rule %s: daily_min %.1f exceeds daily_max %.1f", r.RuleID, *r.DailyMin, *r.DailyMax))
		}
		switch r.Kind {
		case models.LimitMax:
			if r.DailyMax == nil && r.PerMealMax == nil {
				problems = append(problems, fmt.Sprintf("rule %s: kind max without a maximum", r.RuleID))
			}
		case models.LimitMin:
			if r.DailyMin == nil {
				problems = append(problems, fmt.Sprintf("rule %s: kind min without daily_min", r.RuleID))
			}
		case models.LimitRange:
			if r.DailyMin == nil || r.DailyMax == nil {
				problems = append(problems, fmt.Sprintf("rule %s: kind range without both bounds", r.RuleID))
			}
		default:
			problems = append(problems, fmt.Sprintf("rule %s: unknown limit kind %q", r.RuleID, r.Kind))
		}
	}
	for _, n := range c.Nutrients {
		if rulesPerNutrient[n] == 0 {
			problems = append(problems, fmt.Sprintf("nutrient %q has no rules", n))
		}
	}

	for _, fr := range c.FoodRules {
		checkID(fr.RuleID)
		checkPredicate(fr.RuleID, fr.Predicate)
		if fr.FoodID == "" || fr.FoodName == "" {
			problems = append(problems, fmt.Sprintf("rule %s: food id and name are required", fr.RuleID))
		}
		switch fr.Severity {
		case models.SeverityProhibited, models.SeverityLimited, models.SeverityWarning:
		default:
			problems = append(problems, fmt.Sprintf("rule %s: unknown severity %q", fr.RuleID, fr.Severity))
		}
		if !fr.Priority.Valid() {
			problems = append(problems, fmt.Sprintf("rule %s: invalid priority rank %d", fr.RuleID, fr.Priority))
		}
		if fr.Reason == "" {
			problems = append(problems, fmt.Sprintf("rule %s: empty reason", fr.RuleID))
		}
		if fr.Temporal != nil && fr.Temporal.MinGapHours <= 0 {
			problems = append(problems, fmt.Sprintf("rule %s: temporal separation requires a positive gap", fr.RuleID))
		}
	}

	if len(c.ProteinRules) == 0 {
		problems = append(problems, "no protein factor rules")
	} else {
		last := c.ProteinRules[len(c.ProteinRules)-1]
		if len(last.Predicate.AllConditions) != 0 || len(last.Predicate.AnyConditions) != 0 || len(last.Predicate.Labs) != 0 {
			problems = append(problems, fmt.Sprintf("last protein rule %s must be an unconditional default", last.RuleID))
		}
	}
	for _, pr := range c.ProteinRules {
		checkID(pr.RuleID)
		checkPredicate(pr.RuleID, pr.Predicate)
		if pr.FactorLow <= 0 || pr.FactorHigh < pr.FactorLow {
			problems = append(problems, fmt.Sprintf("rule %s: invalid factor range %.2f-%.2f", pr.RuleID, pr.FactorLow, pr.FactorHigh))
		}
		if pr.Rationale == "" {
			problems = append(problems, fmt.Sprintf("rule %s: empty rationale", pr.RuleID))
		}
	}

	for _, sn := range c.SafetyNotes {
		checkID(sn.RuleID)
		checkPredicate(sn.RuleID, sn.Predicate)
		if sn.Note == "" {
			problems = append(problems, fmt.Sprintf("rule %s: empty note", sn.RuleID))
		}
	}

	// Sorted iteration keeps the problem list stable across runs, so a
	// startup failure always reports in the same order.
	mandatoryConds := make([]models.Condition, 0, len(c.Mandatory))
	for cond := range c.Mandatory {
		mandatoryConds = append(mandatoryConds, cond)
	}
	sort.Slice(mandatoryConds, func(i, j int) bool { return mandatoryConds[i] < mandatoryConds[j] })
	for _, cond := range mandatoryConds {
		if !knownConditions[cond] {
			problems = append(problems, fmt.Sprintf("mandatory map references unknown condition %q", cond))
		}
		for _, n := range c.Mandatory[cond] {
			if !declared[n] {
				problems = append(problems, fmt.Sprintf("mandatory nutrient %q for condition %q is not declared", n, cond))
			}
			if rulesPerNutrient[n] == 0 {
				problems = append(problems, fmt.Sprintf("mandatory nutrient %q for condition %q has no rules", n, cond))
			}
		}
	}

	if len(c.Stages) == 0 {
		problems = append(problems, "no CKD stage bands")
	} else {
		for i := 1; i < len(c.Stages); i++ {
			if c.Stages[i].MinEGFR >= c.Stages[i-1].MinEGFR {
				problems = append(problems, fmt.Sprintf("CKD stage bands must descend: band %d (%.0f) >= band %d (%.0f)",
					i, c.Stages[i].MinEGFR, i-1, c.Stages[i-1].MinEGFR))
			}
		}
		if c.Stages[len(c.Stages)-1].MinEGFR != 0 {
			problems = append(problems, "last CKD stage band must start at eGFR 0")
		}
	}

	if len(problems) > 0 {
		return &models.CatalogIntegrityError{Problems: problems}
	}
	return nil
}
