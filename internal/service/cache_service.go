package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/evaluer-api/pkg/errors"
)

const gradeCachePrefix = "grades:student:"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is the read-through cache in front of the grade repositories.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool

	// generation advances on every invalidation. A load that overlaps one is not cached.
	// It only orders fills and invalidations within this process.
	mu         sync.RWMutex
	generation uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// GradeCacheKey builds the key of one cached read, e.g. grades:student:7:module:12.
func GradeCacheKey(studentID int64, level string, ids ...int64) string {
	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, level)
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("%s%d:%s", gradeCachePrefix, studentID, strings.Join(parts, ":"))
}

// StudentCachePattern matches every cached read of a student.
func StudentCachePattern(studentID int64) string {
	return fmt.Sprintf("%s%d:*", gradeCachePrefix, studentID)
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache, falling back to the default TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Remember returns the cached float under key or loads, stores and returns it.
// Cache failures never fail the read. A value loaded while the student was invalidated is returned but not stored.
func (s *CacheService) Remember(ctx context.Context, key string, load func(context.Context) (float64, error)) (float64, error) {
	var cached float64
	if hit, err := s.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	gen := s.currentGeneration()
	value, err := load(ctx)
	if err != nil {
		return 0, err
	}
	s.fill(ctx, key, value, gen)
	return value, nil
}

func (s *CacheService) currentGeneration() uint64 {
	if !s.Enabled() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// fill stores value unless an invalidation ran after gen was taken.
func (s *CacheService) fill(ctx context.Context, key string, value interface{}, gen uint64) {
	if !s.Enabled() {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation != gen {
		s.logger.Debug("cache fill skipped, invalidated during load", zap.String("key", key))
		return
	}
	_ = s.Set(ctx, key, value, 0)
}

// InvalidateStudent drops every cached read of the student.
func (s *CacheService) InvalidateStudent(ctx context.Context, studentID int64) error {
	if !s.Enabled() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	pattern := StudentCachePattern(studentID)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}
