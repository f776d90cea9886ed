package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/devstorm/docstorm-api/pkg/errors"
)

type cacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService wraps the cache repository with hit/miss instrumentation.
type CacheService struct {
	repo    cacheRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService constructs a CacheService.
func NewCacheService(repo cacheRepository, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, logger: logger}
}

// Get loads a cached value, recording the lookup outcome.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	hit := err == nil
	s.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.Error(err), zap.String("key", key))
	}
	return err
}

// Set stores a value with the given TTL. Failures are logged, not returned:
// a broken cache must not take the feature down with it.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.repo.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache set failed", zap.Error(err), zap.String("key", key))
	}
}

// DeleteByPattern invalidates cached entries.
func (s *CacheService) DeleteByPattern(ctx context.Context, pattern string) error {
	return s.repo.DeleteByPattern(ctx, pattern)
}
