package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pantry-to-plate/internal/config"
	"pantry-to-plate/internal/models"

	"go.uber.org/zap"
)

// CacheManager publishes constraint documents for the pantry-validation
// and recipe-adaptation collaborators, which read them from Redis instead
// of hitting PostgreSQL on every lookup.
type CacheManager struct {
	config *config.Config
	store  KVStore
	logger *zap.Logger
}

// NewCacheManager creates a cache manager over a KV store.
func NewCacheManager(cfg *config.Config, store KVStore, logger *zap.Logger) *CacheManager {
	return &CacheManager{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

func (c *CacheManager) key(patientID string) string {
	return fmt.Sprintf("%s%s%s",
		c.config.Engine.Cache.KeyPrefix,
		patientID,
		c.config.Engine.Cache.KeySuffix,
	)
}

// PublishConstraint writes the document JSON under the patient's cache key
// with the configured TTL.
func (c *CacheManager) PublishConstraint(ctx context.Context, doc *models.ClinicalConstraint) error {
	if doc == nil || doc.PatientID == "" {
		return fmt.Errorf("constraint document with patient_id is required")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal constraint document: %w", err)
	}

	ttl := time.Duration(c.config.Engine.Cache.TTL) * time.Second
	if err := c.store.Set(ctx, c.key(doc.PatientID), string(payload), ttl); err != nil {
		return fmt.Errorf("failed to publish constraint: %w", err)
	}

	c.logger.Debug("constraint published",
		zap.String("patient_id", doc.PatientID),
		zap.Int("ttl_seconds", c.config.Engine.Cache.TTL),
	)
	return nil
}

// GetCachedConstraint reads back the published document, if still cached.
func (c *CacheManager) GetCachedConstraint(ctx context.Context, patientID string) (*models.ClinicalConstraint, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	val, err := c.store.Get(ctx, c.key(patientID))
	if err != nil {
		if err == ErrCacheMiss {
			return nil, fmt.Errorf("constraint not cached for patient: %s", patientID)
		}
		return nil, fmt.Errorf("failed to get cached constraint: %w", err)
	}

	var doc models.ClinicalConstraint
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached constraint: %w", err)
	}
	return &doc, nil
}
