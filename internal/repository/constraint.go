package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pantry-to-plate/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConstraintRepository persists constraint documents (JSONB rows in
// clinical_constraints). The document itself carries no timestamp so the
// same evaluation always serializes identically; created_at lives on the
// row.
type ConstraintRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConstraintRepository creates a constraint repository.
func NewConstraintRepository(db *sql.DB, logger *zap.Logger) *ConstraintRepository {
	return &ConstraintRepository{
		db:     db,
		logger: logger,
	}
}

// SaveConstraint stores a generated document and returns the new row id.
func (r *ConstraintRepository) SaveConstraint(ctx context.Context, doc *models.ClinicalConstraint) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("constraint document is required")
	}
	if doc.PatientID == "" {
		return "", fmt.Errorf("patient_id is required")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal constraint document: %w", err)
	}

	constraintID := uuid.New().String()
	query := `
		INSERT INTO clinical_constraints (constraint_id, patient_id, document, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := r.db.ExecContext(ctx, query, constraintID, doc.PatientID, payload); err != nil {
		return "", fmt.Errorf("failed to save constraint: %w", err)
	}

	r.logger.Info("constraint document saved",
		zap.String("constraint_id", constraintID),
		zap.String("patient_id", doc.PatientID),
		zap.Int("conflicts", len(doc.Conflicts)),
	)

	return constraintID, nil
}

// GetLatestConstraint returns the most recently saved document for a
// patient, or an error when none exists.
func (r *ConstraintRepository) GetLatestConstraint(ctx context.Context, patientID string) (*models.ClinicalConstraint, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT document
		FROM clinical_constraints
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("constraint not found for patient: %s", patientID)
		}
		return nil, fmt.Errorf("failed to get constraint: %w", err)
	}

	var doc models.ClinicalConstraint
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal constraint document: %w", err)
	}

	return &doc, nil
}
