package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pantry-to-plate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalogYAML = `
nutrients: [sodium]
nutrient_rules:
  - rule_id: sodium_general
    nutrient: sodium
    kind: max
    daily_max: 2300
    per_meal_max: 750
    unit: mg
    priority: 6
    source: DRI
    rationale: General population sodium recommendation
  - rule_id: sodium_ckd
    nutrient: sodium
    kind: max
    daily_max: 2000
    unit: mg
    predicate:
      all_conditions: [chronic_kidney_disease]
      labs:
        - key: egfr
          op: lt
          value: 60
    priority: 1
    source: KDOQI
    rationale: CKD sodium restriction
protein_rules:
  - rule_id: protein_general
    factor_low: 0.8
    factor_high: 1.0
    source: DRI
    rationale: Standard protein intake
mandatory:
  chronic_kidney_disease: [sodium]
stages:
  - min_egfr: 60
    label: Stage 2 (Mild)
  - min_egfr: 0
    label: Stage 3-5
`

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Nutrients, cat.Nutrients)
}

func TestLoadFile_ValidCatalog(t *testing.T) {
	cat, err := LoadFile(writeCatalogFile(t, validCatalogYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"sodium"}, cat.Nutrients)
	require.Len(t, cat.NutrientRules, 2)

	general := cat.NutrientRules[0]
	assert.Equal(t, "sodium_general", general.RuleID)
	require.NotNil(t, general.DailyMax)
	assert.Equal(t, 2300.0, *general.DailyMax)
	assert.Equal(t, models.PriorityGeneralHealth, general.Priority)

	ckd := cat.NutrientRules[1]
	assert.Equal(t, []models.Condition{models.ConditionCKD}, ckd.Predicate.AllConditions)
	require.Len(t, ckd.Predicate.Labs, 1)
	assert.Equal(t, models.LabEGFR, ckd.Predicate.Labs[0].Key)
	assert.Equal(t, models.OpLT, ckd.Predicate.Labs[0].Op)
	assert.Equal(t, 60.0, ckd.Predicate.Labs[0].Value)

	assert.Equal(t, "Stage 2 (Mild)", cat.StageFor(75))
	assert.Equal(t, "Stage 3-5", cat.StageFor(20))
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog file")
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	_, err := LoadFile(writeCatalogFile(t, "nutrients: [sodium\n  - broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog file")
}

func TestLoadFile_IntegrityFailureIsFatal(t *testing.T) {
	bad := validCatalogYAML + `
food_rules:
  - rule_id: cabbage_iodine
    food_id: cabbage
    food_name: Cabbage
    severity: warning
    predicate:
      labs:
        - key: iodine_status_typo
          op: ge
          value: 1
    priority: 5
    source: ATA
    reason: goitrogenic when iodine deficient
`
	_, err := LoadFile(writeCatalogFile(t, bad))
	var cie *models.CatalogIntegrityError
	require.True(t, errors.As(err, &cie))
	assert.NotEmpty(t, cie.Problems)
}
