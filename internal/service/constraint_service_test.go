package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"pantry-to-plate/internal/catalog"
	"pantry-to-plate/internal/config"
	"pantry-to-plate/internal/evaluator"
	"pantry-to-plate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProfileSource struct {
	ids      []string
	profiles map[string]*models.PatientProfile
	listErr  error
}

func (f *fakeProfileSource) ListPatientIDs(ctx context.Context) ([]string, error) {
	return f.ids, f.listErr
}

func (f *fakeProfileSource) GetPatientProfile(ctx context.Context, patientID string) (*models.PatientProfile, error) {
	p, ok := f.profiles[patientID]
	if !ok {
		return nil, fmt.Errorf("patient not found: %s", patientID)
	}
	return p, nil
}

type fakeSink struct {
	mu      sync.Mutex
	saved   map[string]*models.ClinicalConstraint
	saveErr map[string]error
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		saved:   make(map[string]*models.ClinicalConstraint),
		saveErr: make(map[string]error),
	}
}

func (f *fakeSink) SaveConstraint(ctx context.Context, doc *models.ClinicalConstraint) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[doc.PatientID]; err != nil {
		return "", err
	}
	f.saved[doc.PatientID] = doc
	return "constraint-" + doc.PatientID, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published map[string]*models.ClinicalConstraint
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(map[string]*models.ClinicalConstraint)}
}

func (f *fakePublisher) PublishConstraint(ctx context.Context, doc *models.ClinicalConstraint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published[doc.PatientID] = doc
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func htnProfile(id string) *models.PatientProfile {
	return &models.PatientProfile{
		PatientID:  id,
		Age:        70,
		Sex:        "female",
		WeightKg:   floatPtr(65),
		Conditions: map[models.Condition]bool{models.ConditionHypertension: true},
		Labs:       map[models.LabKey]float64{},
	}
}

func newTestService(t *testing.T, patients *fakeProfileSource, sink *fakeSink, pub *fakePublisher) *ConstraintService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Engine.Workers = 2
	cat := catalog.Default()
	require.NoError(t, cat.Validate())
	return &ConstraintService{
		config:    cfg,
		logger:    zap.NewNop(),
		patients:  patients,
		sink:      sink,
		publisher: pub,
		evaluator: evaluator.NewEvaluator(cat, zap.NewNop()),
	}
}

func TestRunBatch_EvaluatesSavesAndPublishes(t *testing.T) {
	patients := &fakeProfileSource{
		ids: []string{"P-002", "P-001"},
		profiles: map[string]*models.PatientProfile{
			"P-001": htnProfile("P-001"),
			"P-002": htnProfile("P-002"),
		},
	}
	sink := newFakeSink()
	pub := newFakePublisher()
	svc := newTestService(t, patients, sink, pub)

	results, err := svc.RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by patient id regardless of worker completion order.
	assert.Equal(t, "P-001", results[0].PatientID)
	assert.Equal(t, "P-002", results[1].PatientID)
	for _, res := range results {
		assert.NoError(t, res.Err)
		assert.Equal(t, "constraint-"+res.PatientID, res.ConstraintID)
	}

	assert.Len(t, sink.saved, 2)
	assert.Len(t, pub.published, 2)
	doc := sink.saved["P-001"]
	require.NotNil(t, doc)
	assert.True(t, doc.MedicalConditions[models.ConditionHypertension])
	assert.NotEmpty(t, doc.Nutrients)
}

func TestRunBatch_PerPatientFailureDoesNotAbort(t *testing.T) {
	patients := &fakeProfileSource{
		ids: []string{"P-001", "ghost"},
		profiles: map[string]*models.PatientProfile{
			"P-001": htnProfile("P-001"),
		},
	}
	sink := newFakeSink()
	pub := newFakePublisher()
	svc := newTestService(t, patients, sink, pub)

	results, err := svc.RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.Contains(t, results[1].Err.Error(), "patient not found")
	assert.Len(t, sink.saved, 1)
}

func TestRunBatch_SaveFailureRecorded(t *testing.T) {
	patients := &fakeProfileSource{
		ids: []string{"P-001"},
		profiles: map[string]*models.PatientProfile{
			"P-001": htnProfile("P-001"),
		},
	}
	sink := newFakeSink()
	sink.saveErr["P-001"] = fmt.Errorf("connection reset")
	pub := newFakePublisher()
	svc := newTestService(t, patients, sink, pub)

	results, err := svc.RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Empty(t, results[0].ConstraintID)
	assert.Empty(t, pub.published)
}

func TestRunBatch_PublishFailureIsNonFatal(t *testing.T) {
	patients := &fakeProfileSource{
		ids: []string{"P-001"},
		profiles: map[string]*models.PatientProfile{
			"P-001": htnProfile("P-001"),
		},
	}
	sink := newFakeSink()
	pub := newFakePublisher()
	pub.err = fmt.Errorf("redis unavailable")
	svc := newTestService(t, patients, sink, pub)

	results, err := svc.RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "constraint-P-001", results[0].ConstraintID)
	assert.Len(t, sink.saved, 1)
}

func TestRunBatch_ListFailure(t *testing.T) {
	patients := &fakeProfileSource{listErr: fmt.Errorf("db down")}
	svc := newTestService(t, patients, newFakeSink(), newFakePublisher())

	_, err := svc.RunBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list patients")
}

func TestRunBatch_NoPatients(t *testing.T) {
	svc := newTestService(t, &fakeProfileSource{}, newFakeSink(), newFakePublisher())

	results, err := svc.RunBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}
