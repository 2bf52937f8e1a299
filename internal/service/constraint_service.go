package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"pantry-to-plate/internal/catalog"
	"pantry-to-plate/internal/config"
	"pantry-to-plate/internal/consumer"
	"pantry-to-plate/internal/evaluator"
	"pantry-to-plate/internal/models"
	"pantry-to-plate/internal/repository"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// profileSource is the slice of PatientRepository the batch needs.
type profileSource interface {
	ListPatientIDs(ctx context.Context) ([]string, error)
	GetPatientProfile(ctx context.Context, patientID string) (*models.PatientProfile, error)
}

// constraintSink persists generated documents.
type constraintSink interface {
	SaveConstraint(ctx context.Context, doc *models.ClinicalConstraint) (string, error)
}

// constraintPublisher pushes documents to downstream collaborators.
type constraintPublisher interface {
	PublishConstraint(ctx context.Context, doc *models.ClinicalConstraint) error
}

// PatientResult is the per-patient outcome of one batch run. Failures are
// recorded here instead of aborting the batch.
type PatientResult struct {
	PatientID    string
	ConstraintID string
	Err          error
}

// ConstraintService wires the layers together and runs evaluation batches.
type ConstraintService struct {
	config      *config.Config
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger

	patients  profileSource
	sink      constraintSink
	publisher constraintPublisher
	evaluator *evaluator.Evaluator
}

// NewConstraintService connects PostgreSQL and Redis and builds the
// pipeline over the given validated catalog.
func NewConstraintService(cfg *config.Config, cat *catalog.Catalog, logger *zap.Logger) (*ConstraintService, error) {
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Database.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxConns)
	}
	if cfg.Database.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdle)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &ConstraintService{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
		patients:    repository.NewPatientRepository(db, logger),
		sink:        repository.NewConstraintRepository(db, logger),
		publisher:   consumer.NewCacheManager(cfg, consumer.NewRedisKVStore(redisClient), logger),
		evaluator:   evaluator.NewEvaluator(cat, logger),
	}, nil
}

// Start runs an evaluation batch immediately and then on every poll
// interval until the context is cancelled, so constraints track changes in
// the extraction tables.
func (s *ConstraintService) Start(ctx context.Context) error {
	interval := time.Duration(s.config.Engine.PollInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("constraint service started",
		zap.Int("workers", s.config.Engine.Workers),
		zap.Duration("poll_interval", interval),
	)

	for {
		if _, err := s.RunBatch(ctx); err != nil {
			s.logger.Error("batch run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunBatch evaluates every available patient, fanning the independent
// evaluations out across the worker pool. Per-patient failures are
// recorded and do not stop the batch; results are re-sorted by patient
// identifier so reports are reproducible regardless of arrival order.
func (s *ConstraintService) RunBatch(ctx context.Context) ([]PatientResult, error) {
	ids, err := s.patients.ListPatientIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if len(ids) == 0 {
		return []PatientResult{}, nil
	}

	workers := s.config.Engine.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan PatientResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				results <- s.evaluatePatient(ctx, id)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]PatientResult, 0, len(ids))
	failures := 0
	for res := range results {
		if res.Err != nil {
			failures++
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatientID < out[j].PatientID })

	s.logger.Info("batch completed",
		zap.Int("patients", len(out)),
		zap.Int("failures", failures),
	)
	return out, nil
}

// evaluatePatient runs the full pipeline for one patient: load profile,
// evaluate, persist, publish.
func (s *ConstraintService) evaluatePatient(ctx context.Context, patientID string) PatientResult {
	res := PatientResult{PatientID: patientID}

	profile, err := s.patients.GetPatientProfile(ctx, patientID)
	if err != nil {
		res.Err = err
		s.logger.Error("failed to load patient profile",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return res
	}

	doc, err := s.evaluator.Evaluate(profile)
	if err != nil {
		res.Err = err
		var dce *models.DataCompletenessError
		if errors.As(err, &dce) {
			// Incomplete data aborts this patient only; the batch
			// continues and the failure is reported per patient.
			s.logger.Warn("evaluation skipped: incomplete clinical data",
				zap.String("patient_id", patientID),
				zap.Strings("missing", dce.Missing),
			)
		} else {
			s.logger.Error("evaluation failed",
				zap.String("patient_id", patientID),
				zap.Error(err),
			)
		}
		return res
	}

	constraintID, err := s.sink.SaveConstraint(ctx, doc)
	if err != nil {
		res.Err = err
		s.logger.Error("failed to save constraint",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return res
	}
	res.ConstraintID = constraintID

	if err := s.publisher.PublishConstraint(ctx, doc); err != nil {
		// Persisted but not cached; collaborators fall back to the DB.
		s.logger.Warn("failed to publish constraint to cache",
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
	}

	return res
}

// Stop releases database and cache connections.
func (s *ConstraintService) Stop() {
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("failed to close redis client", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("failed to close database", zap.Error(err))
		}
	}
}
