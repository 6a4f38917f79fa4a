package repository

import (
	"context"
	"time"

	"CryptoView/internal/domain/models"
)

// MarketData is the read side of the market-data API. Implementations absorb
// upstream failures and return empty collections instead of errors.
type MarketData interface {
	ListTop(ctx context.Context, n int) []models.Asset
	GetByIDs(ctx context.Context, ids []string) []models.Asset
	Search(ctx context.Context, query string) []models.SearchCandidate
	GetOHLC(ctx context.Context, id string, days int) []models.Candle
}

// RosterStore persists the tracked identifier list.
type RosterStore interface {
	LoadIDs(ctx context.Context) ([]string, error)
	SaveIDs(ctx context.Context, ids []string) error
}

// AnalysisStore is the per-asset analysis cache.
type AnalysisStore interface {
	Get(ctx context.Context, assetID string) (*models.CombinedAnalysis, bool)
	Put(ctx context.Context, assetID string, data *models.CombinedAnalysis) error
	Invalidate(ctx context.Context, assetID string) error
}

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.Event) error
	Close() error
}

// SnapshotRecorder archives adopted roster snapshots.
type SnapshotRecorder interface {
	Record(ctx context.Context, at time.Time, assets []models.Asset) error
	Close() error
}

type Metrics interface {
	RecordCacheResult(scope, result string)
	RecordUpstream(endpoint string, status int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordRosterSize(n int)
	RecordAnalysis(result string)
}
