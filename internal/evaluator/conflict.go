package evaluator

import (
	"fmt"
	"strings"

	"pantry-to-plate/internal/models"
)

// interval is the closed numeric range implied by a rule's daily bounds.
// A nil end means unbounded in that direction.
type interval struct {
	min *float64
	max *float64
}

func ruleInterval(r models.NutrientRule) interval {
	return interval{min: r.DailyMin, max: r.DailyMax}
}

// intersect computes the exact intersection of two intervals. ok is false
// when the intersection is empty, which is the definition of a conflict.
func intersect(a, b interval) (interval, bool) {
	out := interval{min: a.min, max: a.max}
	if b.min != nil && (out.min == nil || *b.min > *out.min) {
		out.min = b.min
	}
	if b.max != nil && (out.max == nil || *b.max < *out.max) {
		out.max = b.max
	}
	if out.min != nil && out.max != nil && *out.min > *out.max {
		return interval{}, false
	}
	return out, true
}

// resolvedNutrient is the outcome of conflict detection and priority
// resolution for one nutrient group.
type resolvedNutrient struct {
	nutrient   string
	unit       string
	dailyMin   *float64
	dailyMax   *float64
	perMealMax *float64 // explicit rule value; nil means derive from daily
	dominant   models.NutrientRule
	conflict   *models.ConflictRecord
	tieWarning string
}

// resolveGroup detects whether the applicable rules for one nutrient are
// mutually satisfiable and, when they are not, resolves the clash by
// priority rank. Rules arrive in catalog registration order.
func resolveGroup(nutrient string, rules []models.NutrientRule) resolvedNutrient {
	out := resolvedNutrient{nutrient: nutrient, unit: rules[0].Unit}

	// Exact interval arithmetic over the whole group first. A non-empty
	// intersection means no conflict: tighter maxima simply dominate and
	// no override is recorded.
	full := interval{}
	conflicted := false
	for _, r := range rules {
		var ok bool
		full, ok = intersect(full, ruleInterval(r))
		if !ok {
			conflicted = true
			break
		}
	}

	members := rules
	if conflicted {
		winnerIdx := pickWinner(rules)
		winner := rules[winnerIdx]

		// Rules whose interval is compatible with the winner still
		// tighten its bounds; the rest are the displaced losers.
		members = []models.NutrientRule{winner}
		acc := ruleInterval(winner)
		var losers []models.LosingRule
		for i, r := range rules {
			if i == winnerIdx {
				continue
			}
			merged, ok := intersect(acc, ruleInterval(r))
			if !ok {
				losers = append(losers, models.LosingRule{
					RuleID:    r.RuleID,
					DailyMax:  r.DailyMax,
					DailyMin:  r.DailyMin,
					Priority:  r.Priority,
					Source:    r.Source,
					Rationale: r.Rationale,
				})
				continue
			}
			acc = merged
			members = append(members, r)
		}
		full = acc

		loserDescs := make([]string, 0, len(losers))
		for _, l := range losers {
			loserDescs = append(loserDescs, fmt.Sprintf("%s (%s)", l.Source, l.RuleID))
		}
		out.conflict = &models.ConflictRecord{
			Nutrient:       nutrient,
			WinnerRuleID:   winner.RuleID,
			WinnerDailyMax: winner.DailyMax,
			WinnerDailyMin: winner.DailyMin,
			WinnerPriority: winner.Priority,
			WinnerSource:   winner.Source,
			Losers:         losers,
			OverrideReason: fmt.Sprintf("%s. Safety takes precedence: this %s limit overrides %s.",
				winner.Rationale, winner.Priority.Label(), strings.Join(loserDescs, ", ")),
		}

		// Equal top ranks should not occur in a well-formed catalog;
		// resolve deterministically but flag for human review.
		topRankCount := 0
		for _, r := range rules {
			if r.Priority == winner.Priority {
				topRankCount++
			}
		}
		if topRankCount > 1 {
			out.conflict.TieBreak = true
			out.tieWarning = fmt.Sprintf(
				"priority tie at rank %d (%s) for nutrient %s resolved by registration order in favor of %s; flagged for human review",
				winner.Priority, winner.Priority.Label(), nutrient, winner.RuleID)
		}
	}

	out.dailyMin = full.min
	out.dailyMax = full.max
	out.dominant = pickDominant(members, full)
	out.perMealMax = pickPerMeal(members)
	return out
}

// pickWinner selects the conflicted group's winning rule: lowest priority
// rank, ties broken by registration order.
func pickWinner(rules []models.NutrientRule) int {
	winner := 0
	for i := 1; i < len(rules); i++ {
		if rules[i].Priority < rules[winner].Priority {
			winner = i
		}
	}
	return winner
}

// pickDominant chooses which member rule supplies the constraint's
// priority, source and rationale: the highest-priority rule among those
// actually supplying an effective bound. Ties fall back to registration
// order. When the group carries no daily bound at all (per-meal only
// rules), every member is a candidate.
func pickDominant(members []models.NutrientRule, effective interval) models.NutrientRule {
	var candidates []models.NutrientRule
	for _, r := range members {
		supplies := false
		if effective.max != nil && r.DailyMax != nil && *r.DailyMax == *effective.max {
			supplies = true
		}
		if effective.min != nil && r.DailyMin != nil && *r.DailyMin == *effective.min {
			supplies = true
		}
		if supplies {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		candidates = members
	}
	dominant := candidates[0]
	for _, r := range candidates[1:] {
		if r.Priority < dominant.Priority {
			dominant = r
		}
	}
	return dominant
}

// pickPerMeal returns the tightest explicit per-meal cap among members.
func pickPerMeal(members []models.NutrientRule) *float64 {
	var out *float64
	for _, r := range members {
		if r.PerMealMax == nil {
			continue
		}
		if out == nil || *r.PerMealMax < *out {
			out = r.PerMealMax
		}
	}
	return out
}
