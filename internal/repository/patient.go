package repository

import (
	"context"
	"database/sql"
	"fmt"

	"pantry-to-plate/internal/models"

	"go.uber.org/zap"
)

// PatientRepository reads the materialized extraction tables. The
// extraction collaborator populates patients, patient_conditions and
// patient_labs before a batch starts; this repository only assembles.
type PatientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPatientRepository creates a patient repository.
func NewPatientRepository(db *sql.DB, logger *zap.Logger) *PatientRepository {
	return &PatientRepository{
		db:     db,
		logger: logger,
	}
}

// ListPatientIDs returns every patient available for evaluation, ordered
// by identifier so batch reports stay reproducible.
func (r *PatientRepository) ListPatientIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT patient_id
		FROM patients
		ORDER BY patient_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan patient_id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	return ids, nil
}

// GetPatientProfile assembles the immutable profile for one patient:
// demographics, active condition flags, and available lab values. Missing
// labs are permitted; unknown lab names are skipped with a warning since
// the evaluator only understands the closed lab-key set.
func (r *PatientRepository) GetPatientProfile(ctx context.Context, patientID string) (*models.PatientProfile, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT patient_id, age, sex, weight_kg
		FROM patients
		WHERE patient_id = $1
	`

	profile := &models.PatientProfile{
		Conditions: make(map[models.Condition]bool),
		Labs:       make(map[models.LabKey]float64),
	}
	var weight sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, patientID).Scan(
		&profile.PatientID,
		&profile.Age,
		&profile.Sex,
		&weight,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %s", patientID)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if weight.Valid {
		w := weight.Float64
		profile.WeightKg = &w
	}

	if err := r.loadConditions(ctx, profile); err != nil {
		return nil, err
	}
	if err := r.loadLabs(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

func (r *PatientRepository) loadConditions(ctx context.Context, profile *models.PatientProfile) error {
	query := `
		SELECT condition
		FROM patient_conditions
		WHERE patient_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, profile.PatientID)
	if err != nil {
		return fmt.Errorf("failed to get conditions: %w", err)
	}
	defer rows.Close()

	known := make(map[models.Condition]bool)
	for _, c := range models.KnownConditions() {
		known[c] = true
	}

	for rows.Next() {
		var cond string
		if err := rows.Scan(&cond); err != nil {
			return fmt.Errorf("failed to scan condition: %w", err)
		}
		c := models.Condition(cond)
		if !known[c] {
			r.logger.Warn("skipping unknown condition",
				zap.String("patient_id", profile.PatientID),
				zap.String("condition", cond),
			)
			continue
		}
		profile.Conditions[c] = true
	}
	return rows.Err()
}

func (r *PatientRepository) loadLabs(ctx context.Context, profile *models.PatientProfile) error {
	query := `
		SELECT lab_name, lab_value
		FROM patient_labs
		WHERE patient_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, profile.PatientID)
	if err != nil {
		return fmt.Errorf("failed to get labs: %w", err)
	}
	defer rows.Close()

	known := make(map[models.LabKey]bool)
	for _, k := range models.KnownLabKeys() {
		known[k] = true
	}

	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("failed to scan lab: %w", err)
		}
		key := models.LabKey(name)
		if !known[key] {
			r.logger.Warn("skipping unknown lab parameter",
				zap.String("patient_id", profile.PatientID),
				zap.String("lab_name", name),
			)
			continue
		}
		profile.Labs[key] = value
	}
	return rows.Err()
}
