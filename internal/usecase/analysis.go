package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	domrepo "CryptoView/internal/domain/repository"
	"CryptoView/internal/domain/service"
	applogger "CryptoView/pkg/logger"
	"CryptoView/pkg/metrics"
)

// AnalysisDeps are the collaborators shared by every orchestrator.
type AnalysisDeps struct {
	Generator service.AnalysisGenerator
	Store     domrepo.AnalysisStore
	Events    domrepo.EventPublisher
	Metrics   domrepo.Metrics
	Clock     clock.Clock
	Logger    *applogger.Logger
}

func (d AnalysisDeps) withDefaults() AnalysisDeps {
	if d.Events == nil {
		d.Events = noopEvents{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Logger == nil {
		d.Logger = applogger.NewNop()
	}
	return d
}

// AnalysisOrchestrator is the analysis state machine of one viewer. A result
// is applied only while its asset is still the current selection.
type AnalysisOrchestrator struct {
	deps AnalysisDeps

	mu         sync.Mutex
	generation uint64
	snap       models.AnalysisSnapshot
}

func NewAnalysisOrchestrator(deps AnalysisDeps) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		deps: deps.withDefaults(),
		snap: models.AnalysisSnapshot{State: models.AnalysisIdle},
	}
}

// Snapshot returns the current state.
func (o *AnalysisOrchestrator) Snapshot() models.AnalysisSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Reset returns to Idle and invalidates any request in flight.
func (o *AnalysisOrchestrator) Reset() {
	o.mu.Lock()
	o.generation++
	o.snap = models.AnalysisSnapshot{State: models.AnalysisIdle, UpdatedAt: o.deps.Clock.Now()}
	o.mu.Unlock()
}

// Select moves to Loading for asset and runs the flow to Ready or Failed.
// Without force a fresh cache entry is served without a request; with force
// the cache is bypassed and the displayed result is cleared first. The
// returned snapshot is the orchestrator state once this call is done, which
// belongs to a newer selection when this one was superseded.
func (o *AnalysisOrchestrator) Select(ctx context.Context, asset models.Asset, force bool) models.AnalysisSnapshot {
	now := o.deps.Clock.Now()

	o.mu.Lock()
	o.generation++
	gen := o.generation
	prev := o.snap
	o.snap = models.AnalysisSnapshot{AssetID: asset.ID, State: models.AnalysisLoading, UpdatedAt: now}
	if !force && prev.AssetID == asset.ID {
		// keep showing the previous result while revalidating the same asset
		o.snap.Data = prev.Data
	}
	o.mu.Unlock()

	if !force {
		if cached, ok := o.deps.Store.Get(ctx, asset.ID); ok {
			o.deps.Metrics.RecordCacheResult("analysis", "hit")
			return o.apply(gen, models.AnalysisSnapshot{
				AssetID:   asset.ID,
				State:     models.AnalysisReady,
				Data:      cached,
				FromCache: true,
			})
		}
		o.deps.Metrics.RecordCacheResult("analysis", "miss")
	}

	start := time.Now()
	data, err := o.deps.Generator.Generate(ctx, asset)
	o.deps.Metrics.RecordLatency("analysis_generate", time.Since(start).Seconds())
	if err != nil {
		return o.fail(gen, asset, err)
	}

	if err := o.deps.Store.Put(ctx, asset.ID, data); err != nil {
		o.deps.Logger.Warn("analysis cache write failed",
			applogger.String("asset", asset.ID),
			applogger.Error(err),
		)
	}
	o.deps.Metrics.RecordAnalysis("ok")
	ev := models.Event{
		Type:       models.EventAnalysisCompleted,
		Key:        asset.ID,
		OccurredAt: o.deps.Clock.Now(),
		Payload: map[string]interface{}{
			"asset":     asset.ID,
			"bias":      data.TechnicalAnalysis.MarketContext.Bias,
			"direction": data.TechnicalAnalysis.Setup.Direction,
			"sentiment": data.NewsAnalysis.GlobalSentiment,
		},
	}
	if err := o.deps.Events.Publish(ctx, ev); err != nil {
		o.deps.Logger.Warn("publish analysis event failed", applogger.Error(err))
	}

	return o.apply(gen, models.AnalysisSnapshot{AssetID: asset.ID, State: models.AnalysisReady, Data: data})
}

func (o *AnalysisOrchestrator) fail(gen uint64, asset models.Asset, err error) models.AnalysisSnapshot {
	if errors.Is(err, service.ErrMissingCredential) {
		o.deps.Metrics.RecordAnalysis("unconfigured")
		o.deps.Logger.Warn("analysis skipped, no credential configured", applogger.String("asset", asset.ID))
	} else {
		o.deps.Metrics.RecordAnalysis("failed")
		o.deps.Logger.Error("analysis generation failed",
			applogger.String("asset", asset.ID),
			applogger.Error(err),
		)
	}
	return o.apply(gen, models.AnalysisSnapshot{
		AssetID: asset.ID,
		State:   models.AnalysisFailed,
		Data:    PlaceholderAnalysis(err),
	})
}

func (o *AnalysisOrchestrator) apply(gen uint64, next models.AnalysisSnapshot) models.AnalysisSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.deps.Metrics.RecordAnalysis("superseded")
		return o.snap
	}
	next.UpdatedAt = o.deps.Clock.Now()
	o.snap = next
	return next
}
