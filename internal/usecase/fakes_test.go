package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	"CryptoView/pkg/cache"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeMarket struct {
	mu       sync.Mutex
	assets   map[string]models.Asset
	ranked   []string
	found    []models.SearchCandidate
	candles  []models.Candle
	calls    map[string]int
	queries  []string
	onSearch func(q string)
	onFetch  func()
}

func newFakeMarket(assets ...models.Asset) *fakeMarket {
	m := &fakeMarket{assets: map[string]models.Asset{}, calls: map[string]int{}}
	for _, a := range assets {
		m.assets[a.ID] = a
		m.ranked = append(m.ranked, a.ID)
	}
	sort.SliceStable(m.ranked, func(i, j int) bool {
		return m.assets[m.ranked[i]].MarketCap > m.assets[m.ranked[j]].MarketCap
	})
	return m
}

func (m *fakeMarket) hit(op string) {
	m.mu.Lock()
	m.calls[op]++
	fn := m.onFetch
	m.mu.Unlock()
	if fn != nil && op != "search" {
		fn()
	}
}

func (m *fakeMarket) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *fakeMarket) ListTop(_ context.Context, n int) []models.Asset {
	m.hit("top")
	out := []models.Asset{}
	for i, id := range m.ranked {
		if i >= n {
			break
		}
		out = append(out, m.assets[id])
	}
	return out
}

func (m *fakeMarket) GetByIDs(_ context.Context, ids []string) []models.Asset {
	m.hit("ids")
	out := []models.Asset{}
	for _, id := range ids {
		if a, ok := m.assets[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (m *fakeMarket) Search(_ context.Context, q string) []models.SearchCandidate {
	m.hit("search")
	m.mu.Lock()
	m.queries = append(m.queries, q)
	fn := m.onSearch
	found := append([]models.SearchCandidate(nil), m.found...)
	m.mu.Unlock()
	if fn != nil {
		fn(q)
	}
	return found
}

func (m *fakeMarket) GetOHLC(context.Context, string, int) []models.Candle {
	m.hit("ohlc")
	return append([]models.Candle(nil), m.candles...)
}

func asset(id string, capUSD float64) models.Asset {
	return models.Asset{ID: id, Symbol: id[:3], Name: id, MarketCap: capUSD, CurrentPrice: 10}
}

func topAssets(n int) []models.Asset {
	out := make([]models.Asset, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, asset(fmt.Sprintf("coin%02d", i), float64(1000-i)))
	}
	return out
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []string
	err     error
	onCall  func(id string)
	summary string
}

func (g *fakeGenerator) Generate(_ context.Context, a models.Asset) (*models.CombinedAnalysis, error) {
	g.mu.Lock()
	g.calls = append(g.calls, a.ID)
	fn, err := g.onCall, g.err
	g.mu.Unlock()
	if fn != nil {
		fn(a.ID)
	}
	if err != nil {
		return nil, err
	}
	return &models.CombinedAnalysis{
		TechnicalAnalysis: models.AnalysisResult{
			Summary:       "plan for " + a.ID + g.summary,
			MarketContext: models.MarketContext{Bias: models.BiasBullish},
			Setup:         models.TradeSetup{Direction: models.DirectionLong},
		},
		NewsAnalysis: models.NewsBundle{GlobalSentiment: "Neutral", NewsItems: []models.NewsItem{}},
	}, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func newMemoryKV(t *testing.T, clk clock.Clock) *cache.MemoryCache {
	t.Helper()
	kv := cache.NewMemoryCache(cache.WithMemoryClock(clk))
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingEvents) Publish(_ context.Context, ev models.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
