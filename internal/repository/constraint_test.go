package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"pantry-to-plate/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleConstraint() *models.ClinicalConstraint {
	max := 2000.0
	return &models.ClinicalConstraint{
		PatientID:         "P-001",
		MedicalConditions: map[models.Condition]bool{models.ConditionCKD: true},
		Nutrients: []models.NutrientConstraint{
			{
				Nutrient:      "potassium",
				DailyMax:      &max,
				Unit:          "mg",
				Priority:      models.PriorityCriticalRenal,
				PriorityLabel: "critical_renal",
				Source:        "KDOQI",
			},
		},
	}
}

func TestSaveConstraint(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewConstraintRepository(db, zap.NewNop())
	doc := sampleConstraint()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO clinical_constraints").
		WithArgs(sqlmock.AnyArg(), "P-001", payload).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.SaveConstraint(context.Background(), doc)
	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveConstraint_Guards(t *testing.T) {
	db, _ := setupMock(t)
	repo := NewConstraintRepository(db, zap.NewNop())

	_, err := repo.SaveConstraint(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint document is required")

	_, err = repo.SaveConstraint(context.Background(), &models.ClinicalConstraint{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patient_id is required")
}

func TestGetLatestConstraint(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewConstraintRepository(db, zap.NewNop())
	payload, err := json.Marshal(sampleConstraint())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT document").
		WithArgs("P-001").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(payload))

	doc, err := repo.GetLatestConstraint(context.Background(), "P-001")
	require.NoError(t, err)
	assert.Equal(t, "P-001", doc.PatientID)
	require.Len(t, doc.Nutrients, 1)
	assert.Equal(t, "potassium", doc.Nutrients[0].Nutrient)
	assert.Equal(t, "critical_renal", doc.Nutrients[0].PriorityLabel)
}

func TestGetLatestConstraint_NotFound(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewConstraintRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT document").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetLatestConstraint(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint not found")
}
