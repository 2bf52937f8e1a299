package evaluator

import (
	"sort"

	"pantry-to-plate/internal/models"
)

// citationFor builds the citation annotating a constraint entry: the
// guideline source plus, when the triggering predicate references a lab the
// profile carries, that lab key and its numeric reading. Predicates list
// their lab conditions from broadest to most specific, so the last present
// lab is the one cited. Annotation only; values are never altered here.
func citationFor(profile *models.PatientProfile, source string, predicate models.Predicate) *models.Citation {
	cite := &models.Citation{Source: source}
	for _, lc := range predicate.Labs {
		if reading, ok := profile.Lab(lc.Key); ok {
			key := lc.Key
			value := reading
			cite.LabKey = &key
			cite.LabValue = &value
		}
	}
	return cite
}

// buildFoodLists converts the deduplicated food rules into the output
// groups. Ordering is stable: prohibited before limited before warning,
// alphabetical by food identifier within each group.
func buildFoodLists(profile *models.PatientProfile, rules []models.FoodRestrictionRule) (prohibited, limited, warning []models.FoodRestriction) {
	sorted := make([]models.FoodRestrictionRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := models.SeverityRank(sorted[i].Severity), models.SeverityRank(sorted[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].FoodID < sorted[j].FoodID
	})

	prohibited = []models.FoodRestriction{}
	limited = []models.FoodRestriction{}
	warning = []models.FoodRestriction{}
	for _, fr := range sorted {
		entry := models.FoodRestriction{
			FoodID:        fr.FoodID,
			FoodName:      fr.FoodName,
			Severity:      fr.Severity,
			Reason:        fr.Reason,
			Priority:      fr.Priority,
			PriorityLabel: fr.Priority.Label(),
			Alternatives:  fr.Alternatives,
			Temporal:      fr.Temporal,
			Citation:      citationFor(profile, fr.Source, fr.Predicate),
		}
		switch fr.Severity {
		case models.SeverityProhibited:
			prohibited = append(prohibited, entry)
		case models.SeverityLimited:
			limited = append(limited, entry)
		case models.SeverityWarning:
			warning = append(warning, entry)
		}
	}
	return prohibited, limited, warning
}
