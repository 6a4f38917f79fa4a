package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	domrepo "CryptoView/internal/domain/repository"
	applogger "CryptoView/pkg/logger"
	"CryptoView/pkg/metrics"
)

// DefaultTopN is the size of the default roster.
const DefaultTopN = 10

var (
	// ErrInvalidMarketCap is the data-quality rejection of an asset without usable capitalization.
	ErrInvalidMarketCap = errors.New("market cap data is missing or zero")
	// ErrBusy is returned by Try* calls while another roster flow is running.
	ErrBusy = errors.New("roster operation in progress")
)

// RejectionError carries the user-visible reason an asset was refused.
type RejectionError struct {
	Name string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("Cannot add %s: Market Cap data is missing or zero.", e.Name)
}

func (e *RejectionError) Is(target error) bool { return target == ErrInvalidMarketCap }

// MarketRoster owns the tracked asset collection. Flows are serialized and each
// one replaces the displayed collection in a single step.
type MarketRoster struct {
	market  domrepo.MarketData
	store   domrepo.RosterStore
	events  domrepo.EventPublisher
	archive domrepo.SnapshotRecorder
	metrics domrepo.Metrics
	clk     clock.Clock
	logger  *applogger.Logger
	topN    int

	flow sync.Mutex

	mu        sync.RWMutex
	assets    []models.Asset
	ids       []string
	busy      bool
	updatedAt time.Time

	subMu  sync.Mutex
	subs   map[int]func(models.RosterSnapshot)
	nextID int
}

type RosterOption func(*MarketRoster)

func WithRosterEvents(p domrepo.EventPublisher) RosterOption {
	return func(r *MarketRoster) {
		if p != nil {
			r.events = p
		}
	}
}

func WithRosterArchive(a domrepo.SnapshotRecorder) RosterOption {
	return func(r *MarketRoster) {
		if a != nil {
			r.archive = a
		}
	}
}

func WithRosterMetrics(m domrepo.Metrics) RosterOption {
	return func(r *MarketRoster) {
		if m != nil {
			r.metrics = m
		}
	}
}

func WithRosterClock(c clock.Clock) RosterOption {
	return func(r *MarketRoster) {
		if c != nil {
			r.clk = c
		}
	}
}

// WithTopN sets the size of the default roster.
func WithTopN(n int) RosterOption {
	return func(r *MarketRoster) {
		if n > 0 {
			r.topN = n
		}
	}
}

func NewMarketRoster(market domrepo.MarketData, store domrepo.RosterStore, opts ...RosterOption) *MarketRoster {
	r := &MarketRoster{
		market:  market,
		store:   store,
		events:  noopEvents{},
		archive: noopArchive{},
		metrics: metrics.Nop{},
		clk:     clock.Real(),
		logger:  applogger.NewNop(),
		topN:    DefaultTopN,
		assets:  []models.Asset{},
		ids:     []string{},
		subs:    map[int]func(models.RosterSnapshot){},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetLogger allows DI to inject a logger after construction.
func (r *MarketRoster) SetLogger(l *applogger.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Snapshot returns a copy of the current state.
func (r *MarketRoster) Snapshot() models.RosterSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *MarketRoster) snapshotLocked() models.RosterSnapshot {
	return models.RosterSnapshot{
		Assets:    append([]models.Asset(nil), r.assets...),
		IDs:       append([]string(nil), r.ids...),
		Busy:      r.busy,
		UpdatedAt: r.updatedAt,
	}
}

// Lookup returns the displayed asset with id.
func (r *MarketRoster) Lookup(id string) (models.Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assets {
		if a.ID == id {
			return a, true
		}
	}
	return models.Asset{}, false
}

// Contains reports whether id is in the active set.
func (r *MarketRoster) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return containsID(r.ids, id)
}

// Busy reports whether a flow is running.
func (r *MarketRoster) Busy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.busy
}

// OnChange registers fn for every published snapshot and returns an unsubscribe func.
func (r *MarketRoster) OnChange(fn func(models.RosterSnapshot)) func() {
	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.subMu.Unlock()
	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

// LoadInitial adopts the persisted roster, or the default top-N when nothing is persisted.
func (r *MarketRoster) LoadInitial(ctx context.Context) error {
	r.flow.Lock()
	defer r.flow.Unlock()
	return r.run(ctx, "load", r.loadInitial)
}

// Refresh re-fetches the active set, or the default top-N when it is empty.
func (r *MarketRoster) Refresh(ctx context.Context) error {
	r.flow.Lock()
	defer r.flow.Unlock()
	return r.run(ctx, "refresh", r.refresh)
}

// TryRefresh is Refresh that skips instead of waiting when another flow runs.
func (r *MarketRoster) TryRefresh(ctx context.Context) error {
	if !r.flow.TryLock() {
		return ErrBusy
	}
	defer r.flow.Unlock()
	return r.run(ctx, "refresh", r.refresh)
}

// AddAsset appends id to the roster. It is a no-op when id is already active or
// unknown upstream, and fails with a *RejectionError when its market cap is unusable.
func (r *MarketRoster) AddAsset(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" || r.Contains(id) {
		return nil
	}
	r.flow.Lock()
	defer r.flow.Unlock()
	return r.run(ctx, "add", func(ctx context.Context) error { return r.addAsset(ctx, id) })
}

func (r *MarketRoster) run(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	r.setBusy(true)
	err := fn(ctx)
	r.setBusy(false)
	r.metrics.RecordLatency("roster_"+op, time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrInvalidMarketCap) {
		r.metrics.RecordError("roster_" + op)
	}
	return err
}

func (r *MarketRoster) setBusy(b bool) {
	r.mu.Lock()
	r.busy = b
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.notify(snap)
}

func (r *MarketRoster) loadInitial(ctx context.Context) error {
	saved, err := r.store.LoadIDs(ctx)
	if err != nil {
		r.logger.Warn("roster ids unreadable, using default roster", applogger.Error(err))
		saved = nil
	}

	var assets []models.Asset
	if len(saved) > 0 {
		assets = r.market.GetByIDs(ctx, saved)
	} else {
		assets = r.market.ListTop(ctx, r.topN)
	}
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	r.logger.Info("roster loaded",
		applogger.Int("persisted", len(saved)),
		applogger.Int("assets", len(assets)),
	)
	return r.adopt(ctx, assets, ids, true)
}

func (r *MarketRoster) refresh(ctx context.Context) error {
	r.mu.RLock()
	ids := append([]string(nil), r.ids...)
	r.mu.RUnlock()

	var assets []models.Asset
	if len(ids) == 0 {
		assets = r.market.ListTop(ctx, r.topN)
	} else {
		assets = r.market.GetByIDs(ctx, ids)
	}
	return r.adopt(ctx, assets, ids, false)
}

func (r *MarketRoster) addAsset(ctx context.Context, id string) error {
	r.mu.RLock()
	dup := containsID(r.ids, id)
	r.mu.RUnlock()
	if dup {
		return nil
	}

	found := r.market.GetByIDs(ctx, []string{id})
	if len(found) == 0 {
		r.logger.Warn("asset not found upstream", applogger.String("id", id))
		return nil
	}
	a := found[0]
	if !a.HasValidMarketCap() {
		r.logger.Warn("asset rejected",
			applogger.String("id", a.ID),
			applogger.Float64("market_cap", a.MarketCap),
		)
		r.metrics.RecordError("invalid_market_cap")
		name := a.Name
		if name == "" {
			name = a.ID
		}
		return &RejectionError{Name: name}
	}

	r.mu.RLock()
	assets := append(append([]models.Asset(nil), r.assets...), a)
	ids := append(append([]string(nil), r.ids...), id)
	r.mu.RUnlock()
	return r.adopt(ctx, assets, ids, true)
}

// adopt swaps in a new collection and, when idsChanged, the new active set.
func (r *MarketRoster) adopt(ctx context.Context, assets []models.Asset, ids []string, idsChanged bool) error {
	if assets == nil {
		assets = []models.Asset{}
	}
	now := r.clk.Now()

	r.mu.Lock()
	r.assets = assets
	if idsChanged {
		r.ids = ids
	}
	r.updatedAt = now
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.metrics.RecordRosterSize(len(snap.Assets))

	var errs []error
	if idsChanged && len(snap.IDs) > 0 {
		if err := r.store.SaveIDs(ctx, snap.IDs); err != nil {
			r.logger.Error("persist roster ids failed", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if err := r.archive.Record(ctx, now, snap.Assets); err != nil {
		r.logger.Warn("snapshot archive failed", applogger.Error(err))
	}
	ev := models.Event{
		Type:       models.EventRosterUpdated,
		Key:        "roster",
		OccurredAt: now,
		Payload:    map[string]interface{}{"ids": snap.IDs, "count": len(snap.Assets)},
	}
	if err := r.events.Publish(ctx, ev); err != nil {
		r.logger.Warn("publish roster event failed", applogger.Error(err))
	}

	r.notify(snap)
	return errors.Join(errs...)
}

func (r *MarketRoster) notify(s models.RosterSnapshot) {
	r.subMu.Lock()
	fns := make([]func(models.RosterSnapshot), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type noopEvents struct{}

func (noopEvents) Publish(context.Context, models.Event) error { return nil }
func (noopEvents) Close() error { return nil }

type noopArchive struct{}

func (noopArchive) Record(context.Context, time.Time, []models.Asset) error { return nil }
func (noopArchive) Close() error { return nil }
