package repository

import (
	"context"
	"fmt"
	"time"

	"CryptoView/internal/domain/models"
	pkgch "CryptoView/pkg/clickhouse"
	applogger "CryptoView/pkg/logger"
)

// SnapshotSchema creates the roster snapshot archive.
var SnapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS asset_snapshots (
		ts DateTime64(3, 'UTC'),
		asset_id LowCardinality(String),
		symbol LowCardinality(String),
		price Float64,
		market_cap Float64,
		volume_24h Float64,
		change_24h Float64,
		high_24h Float64,
		low_24h Float64
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(ts)
	ORDER BY (asset_id, ts)`,
}

const insertSnapshot = `INSERT INTO asset_snapshots
	(ts, asset_id, symbol, price, market_cap, volume_24h, change_24h, high_24h, low_24h)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// batchInserter is the part of the ClickHouse client the recorder uses.
type batchInserter interface {
	InsertBatch(ctx context.Context, query string, rows [][]any) error
}

// ClickHouseSnapshotRecorder archives every adopted roster snapshot.
type ClickHouseSnapshotRecorder struct {
	db     batchInserter
	closer func() error
	logger *applogger.Logger
}

func NewClickHouseSnapshotRecorder(ch *pkgch.Client) *ClickHouseSnapshotRecorder {
	return &ClickHouseSnapshotRecorder{db: ch, closer: ch.Close, logger: applogger.NewNop()}
}

// SetLogger injects a structured logger.
func (r *ClickHouseSnapshotRecorder) SetLogger(l *applogger.Logger) {
	if l != nil {
		r.logger = l
	}
}

func (r *ClickHouseSnapshotRecorder) Record(ctx context.Context, at time.Time, assets []models.Asset) error {
	rows := snapshotRows(at, assets)
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	if err := r.db.InsertBatch(ctx, insertSnapshot, rows); err != nil {
		r.logger.Error("clickhouse snapshot insert error",
			applogger.Int("rows", len(rows)),
			applogger.Error(err),
		)
		return fmt.Errorf("record snapshot: %w", err)
	}
	r.logger.Debug("snapshot archived",
		applogger.Int("rows", len(rows)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

func (r *ClickHouseSnapshotRecorder) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}

func snapshotRows(at time.Time, assets []models.Asset) [][]any {
	rows := make([][]any, 0, len(assets))
	for _, a := range assets {
		if a.ID == "" {
			continue
		}
		rows = append(rows, []any{
			at.UTC(), a.ID, a.Symbol, a.CurrentPrice, a.MarketCap,
			a.TotalVolume, a.PriceChangePercentage24h, a.High24h, a.Low24h,
		})
	}
	return rows
}

// NoopSnapshotRecorder discards snapshots.
type NoopSnapshotRecorder struct{}

func (NoopSnapshotRecorder) Record(context.Context, time.Time, []models.Asset) error { return nil }
func (NoopSnapshotRecorder) Close() error { return nil }
