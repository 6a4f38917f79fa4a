package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"CryptoView/internal/domain/models"
	domrepo "CryptoView/internal/domain/repository"
)

// ErrAssetNotFound is returned when an asset is neither on the roster nor known upstream.
var ErrAssetNotFound = errors.New("asset not found")

// DefaultViewer is used when a request does not identify its viewer.
const DefaultViewer = "default"

type viewerEntry struct {
	o       *AnalysisOrchestrator
	touched time.Time
}

// AnalysisViewers keeps one orchestrator per viewer so that one client's
// selection never overwrites another's.
type AnalysisViewers struct {
	deps   AnalysisDeps
	roster *MarketRoster
	market domrepo.MarketData

	mu      sync.Mutex
	viewers map[string]*viewerEntry
}

func NewAnalysisViewers(deps AnalysisDeps, roster *MarketRoster, market domrepo.MarketData) *AnalysisViewers {
	return &AnalysisViewers{
		deps:    deps.withDefaults(),
		roster:  roster,
		market:  market,
		viewers: map[string]*viewerEntry{},
	}
}

// Orchestrator returns the orchestrator of viewer, creating it on first use.
func (v *AnalysisViewers) Orchestrator(viewer string) *AnalysisOrchestrator {
	if viewer == "" {
		viewer = DefaultViewer
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.viewers[viewer]
	if !ok {
		e = &viewerEntry{o: NewAnalysisOrchestrator(v.deps)}
		v.viewers[viewer] = e
	}
	e.touched = v.deps.Clock.Now()
	return e.o
}

// Analyze selects assetID for viewer and runs the analysis flow.
func (v *AnalysisViewers) Analyze(ctx context.Context, viewer, assetID string, force bool) (models.AnalysisSnapshot, error) {
	asset, err := v.resolve(ctx, assetID)
	if err != nil {
		return models.AnalysisSnapshot{}, err
	}
	return v.Orchestrator(viewer).Select(ctx, asset, force), nil
}

// Cached returns the fresh cached analysis for assetID without generating one.
func (v *AnalysisViewers) Cached(ctx context.Context, assetID string) (*models.CombinedAnalysis, bool) {
	return v.deps.Store.Get(ctx, assetID)
}

// Sweep drops viewers idle for longer than idle.
func (v *AnalysisViewers) Sweep(idle time.Duration) int {
	now := v.deps.Clock.Now()
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for k, e := range v.viewers {
		if now.Sub(e.touched) > idle {
			e.o.Reset()
			delete(v.viewers, k)
			n++
		}
	}
	return n
}

func (v *AnalysisViewers) resolve(ctx context.Context, id string) (models.Asset, error) {
	if v.roster != nil {
		if a, ok := v.roster.Lookup(id); ok {
			return a, nil
		}
	}
	found := v.market.GetByIDs(ctx, []string{id})
	if len(found) == 0 {
		return models.Asset{}, ErrAssetNotFound
	}
	return found[0], nil
}
