package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	"CryptoView/pkg/cache"
	applogger "CryptoView/pkg/logger"
)

// DefaultAnalysisTTL is how long a generated analysis is served from cache.
const DefaultAnalysisTTL = 15 * time.Minute

const analysisKeyPrefix = "analysis_"

type analysisEntry struct {
	Timestamp int64                    `json:"timestamp"`
	Data      *models.CombinedAnalysis `json:"data"`
}

// CacheAnalysisStore is the per-asset analysis cache on a key-value store.
// Freshness is judged from the stored timestamp against the injected clock.
type CacheAnalysisStore struct {
	kv     cache.Service
	clk    clock.Clock
	ttl    time.Duration
	logger *applogger.Logger
}

func NewCacheAnalysisStore(kv cache.Service, clk clock.Clock, ttl time.Duration) *CacheAnalysisStore {
	if clk == nil {
		clk = clock.Real()
	}
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return &CacheAnalysisStore{kv: kv, clk: clk, ttl: ttl, logger: applogger.NewNop()}
}

// SetLogger allows DI to inject a logger after construction.
func (s *CacheAnalysisStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.logger = l
	}
}

// TTL is the freshness window.
func (s *CacheAnalysisStore) TTL() time.Duration { return s.ttl }

// Get returns the cached analysis when it is younger than the TTL.
func (s *CacheAnalysisStore) Get(ctx context.Context, assetID string) (*models.CombinedAnalysis, bool) {
	e, err := cache.GetTyped[analysisEntry](ctx, s.kv, analysisKeyPrefix+assetID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("analysis cache read failed",
				applogger.String("asset", assetID),
				applogger.Error(err),
			)
		}
		return nil, false
	}
	if e.Data == nil {
		return nil, false
	}
	age := s.clk.Now().Sub(time.UnixMilli(e.Timestamp))
	if age >= s.ttl {
		return nil, false
	}
	return e.Data, true
}

// Put stores data stamped with the current time.
func (s *CacheAnalysisStore) Put(ctx context.Context, assetID string, data *models.CombinedAnalysis) error {
	if data == nil {
		return nil
	}
	e := analysisEntry{Timestamp: s.clk.Now().UnixMilli(), Data: data}
	// backend expiry only reclaims space, freshness is checked on read
	if err := s.kv.Set(ctx, analysisKeyPrefix+assetID, e, 2*s.ttl); err != nil {
		return fmt.Errorf("store analysis %s: %w", assetID, err)
	}
	return nil
}

// Invalidate drops the cached analysis for assetID.
func (s *CacheAnalysisStore) Invalidate(ctx context.Context, assetID string) error {
	if err := s.kv.Delete(ctx, analysisKeyPrefix+assetID); err != nil {
		return fmt.Errorf("invalidate analysis %s: %w", assetID, err)
	}
	return nil
}
