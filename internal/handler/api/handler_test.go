package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	"CryptoView/internal/repository"
	"CryptoView/internal/service/ratelimit"
	"CryptoView/internal/usecase"
	"CryptoView/pkg/cache"
	xhttp "CryptoView/pkg/http"
)

type stubMarket struct {
	assets []models.Asset
	found  []models.SearchCandidate
}

func (m *stubMarket) ListTop(_ context.Context, n int) []models.Asset {
	if n > len(m.assets) {
		n = len(m.assets)
	}
	return append([]models.Asset(nil), m.assets[:n]...)
}

func (m *stubMarket) GetByIDs(_ context.Context, ids []string) []models.Asset {
	out := []models.Asset{}
	for _, id := range ids {
		for _, a := range m.assets {
			if a.ID == id {
				out = append(out, a)
			}
		}
	}
	return out
}

func (m *stubMarket) Search(context.Context, string) []models.SearchCandidate {
	return append([]models.SearchCandidate(nil), m.found...)
}

func (m *stubMarket) GetOHLC(_ context.Context, _ string, days int) []models.Candle {
	out := make([]models.Candle, 0, days)
	for i := 0; i < 25; i++ {
		c := float64(100 + i)
		out = append(out, models.Candle{Time: int64(1700000000 + i*3600), Open: c, High: c + 1, Low: c - 1, Close: c})
	}
	return out
}

type stubGenerator struct{ calls int }

func (g *stubGenerator) Generate(_ context.Context, a models.Asset) (*models.CombinedAnalysis, error) {
	g.calls++
	return &models.CombinedAnalysis{
		TechnicalAnalysis: models.AnalysisResult{
			Summary:       "plan for " + a.ID,
			MarketContext: models.MarketContext{Bias: models.BiasBullish},
			Setup: models.TradeSetup{
				Direction:   models.DirectionLong,
				EntryZone:   "95 - 100",
				StopLoss:    "90",
				TakeProfits: []string{"110"},
			},
		},
		NewsAnalysis: models.NewsBundle{GlobalSentiment: "Neutral", NewsItems: []models.NewsItem{}},
	}, nil
}

const overlayBody = `{"scale":{"width":800,"height":400,"price_low":80,"price_high":120,"time_from":1700000000,"time_to":1700090000}}`

type testAPI struct {
	e      *echo.Echo
	market *stubMarket
	gen    *stubGenerator
	h      *Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	kv := cache.NewMemoryCache(cache.WithMemoryClock(clk))
	t.Cleanup(func() { _ = kv.Close() })

	market := &stubMarket{assets: []models.Asset{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 100, MarketCap: 2000},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 50, MarketCap: 1000},
		{ID: "ghost", Symbol: "gst", Name: "Ghost", CurrentPrice: 1},
	}}
	roster := usecase.NewMarketRoster(market, repository.NewCacheRosterStore(kv),
		usecase.WithTopN(2), usecase.WithRosterClock(clk))
	if err := roster.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load roster: %v", err)
	}

	gen := &stubGenerator{}
	viewers := usecase.NewAnalysisViewers(usecase.AnalysisDeps{
		Generator: gen,
		Store:     repository.NewCacheAnalysisStore(kv, clk, 15*time.Minute),
		Clock:     clk,
	}, roster, market)
	sessions := usecase.NewSearchSessions(market, clk, usecase.SearchOptions{}, time.Minute)
	t.Cleanup(sessions.CloseAll)

	h := NewHandler(nil, Deps{
		Roster:        roster,
		MarketData:    market,
		Charts:        usecase.NewChartUseCase(market),
		Viewers:       viewers,
		Sessions:      sessions,
		Limiter:       ratelimit.New(clk),
		RefreshBurst:  1,
		RefreshPerSec: 0.001,
	})
	e := echo.New()
	h.RegisterRoutes(e)
	return &testAPI{e: e, market: market, gen: gen, h: h}
}

func (a *testAPI) do(t *testing.T, method, path, body string) (int, json.RawMessage) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set(xhttp.HeaderViewerID, "viewer-1")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if rec.Code == http.StatusNoContent {
		return rec.Code, nil
	}
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, resp.Data
}

func TestMarketReturnsBootstrappedRoster(t *testing.T) {
	a := newTestAPI(t)
	code, data := a.do(t, http.MethodGet, "/api/market", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var snap models.RosterSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.IDs) != 2 || snap.IDs[0] != "bitcoin" {
		t.Fatalf("unexpected roster ids %v", snap.IDs)
	}
}

func TestAddCoinRejectsMissingMarketCap(t *testing.T) {
	a := newTestAPI(t)
	code, data := a.do(t, http.MethodPost, "/api/market/coins", `{"id":"ghost"}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	var errs []xhttp.AppError
	if err := json.Unmarshal(data, &errs); err != nil || len(errs) != 1 {
		t.Fatalf("decode errors %s: %v", data, err)
	}
	if errs[0].Code != "ERR_INVALID_MARKET_CAP" || !strings.Contains(errs[0].Message, "Cannot add Ghost") {
		t.Fatalf("unexpected rejection %+v", errs[0])
	}
}

func TestAddCoinValidatesBody(t *testing.T) {
	a := newTestAPI(t)
	if code, _ := a.do(t, http.MethodPost, "/api/market/coins", `{}`); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing id, got %d", code)
	}
}

func TestMarketLayoutCoversViewport(t *testing.T) {
	a := newTestAPI(t)
	code, data := a.do(t, http.MethodPost, "/api/market/layout", `{"width":400,"height":300}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, data)
	}
	var layout struct {
		Tiles []json.RawMessage `json:"tiles"`
	}
	if err := json.Unmarshal(data, &layout); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(layout.Tiles) != 2 {
		t.Fatalf("expected one tile per tracked asset, got %d", len(layout.Tiles))
	}
}

func TestZeroViewportLayoutIsEmpty(t *testing.T) {
	a := newTestAPI(t)
	for _, body := range []string{`{"width":0,"height":600}`, `{"width":800,"height":0}`} {
		code, data := a.do(t, http.MethodPost, "/api/market/layout", body)
		if code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", body, code, data)
		}
		var layout struct {
			Tiles []json.RawMessage `json:"tiles"`
		}
		if err := json.Unmarshal(data, &layout); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if layout.Tiles == nil || len(layout.Tiles) != 0 {
			t.Fatalf("%s: expected an empty tile list, got %s", body, data)
		}
	}

	code, data := a.do(t, http.MethodPost, "/api/market/gesture", `{"width":0,"height":0,"start_x":5,"start_y":5}`)
	if code != http.StatusOK || strings.Contains(string(data), `"selected"`) {
		t.Fatalf("expected an empty gesture result, got %d %s", code, data)
	}
	if code, _ := a.do(t, http.MethodPost, "/api/market/layout", `{"width":-1,"height":600}`); code != http.StatusBadRequest {
		t.Fatalf("negative width should still be rejected, got %d", code)
	}
}

func TestChartComputesMovingAverage(t *testing.T) {
	a := newTestAPI(t)
	code, data := a.do(t, http.MethodGet, "/api/coins/bitcoin/chart?tf=7D", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var chart usecase.ChartData
	if err := json.Unmarshal(data, &chart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if chart.Days != 7 || len(chart.Candles) != 25 || len(chart.MovingAverage) != 6 {
		t.Fatalf("unexpected chart days=%d candles=%d sma=%d", chart.Days, len(chart.Candles), len(chart.MovingAverage))
	}
}

func TestChartRejectsUnknownTimeframe(t *testing.T) {
	a := newTestAPI(t)
	if code, _ := a.do(t, http.MethodGet, "/api/coins/bitcoin/chart?tf=2W", ""); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAnalysisThenOverlay(t *testing.T) {
	a := newTestAPI(t)

	if code, _ := a.do(t, http.MethodPost, "/api/coins/bitcoin/overlay", overlayBody); code != http.StatusNotFound {
		t.Fatalf("expected 404 before any analysis, got %d", code)
	}

	code, data := a.do(t, http.MethodGet, "/api/coins/bitcoin/analysis", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, data)
	}
	var snap models.AnalysisSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.State != models.AnalysisReady || snap.Data == nil {
		t.Fatalf("expected ready analysis, got %+v", snap)
	}

	a.do(t, http.MethodGet, "/api/coins/bitcoin/analysis", "")
	if a.gen.calls != 1 {
		t.Fatalf("expected cached analysis on repeat, generator ran %d times", a.gen.calls)
	}

	code, data = a.do(t, http.MethodPost, "/api/coins/bitcoin/overlay", overlayBody)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, data)
	}
	var ov struct {
		Lines []json.RawMessage `json:"lines"`
	}
	if err := json.Unmarshal(data, &ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ov.Lines) == 0 {
		t.Fatalf("expected price lines in overlay")
	}
}

func TestAnalysisUnknownAsset(t *testing.T) {
	a := newTestAPI(t)
	if code, _ := a.do(t, http.MethodGet, "/api/coins/nope/analysis", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestForcedAnalysisIsRateLimited(t *testing.T) {
	a := newTestAPI(t)
	if code, _ := a.do(t, http.MethodGet, "/api/coins/bitcoin/analysis?force=true", ""); code != http.StatusOK {
		t.Fatalf("expected first forced refresh to pass, got %d", code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/coins/bitcoin/analysis?force=true", nil)
	req.Header.Set(xhttp.HeaderViewerID, "viewer-1")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1000" {
		t.Fatalf("expected Retry-After 1000, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), xhttp.CodeRateLimited) {
		t.Fatalf("expected rate limit code in %s", rec.Body.String())
	}
}

func TestSearchExcludesTrackedAssets(t *testing.T) {
	a := newTestAPI(t)
	a.market.found = []models.SearchCandidate{{ID: "bitcoin"}, {ID: "solana"}}
	code, data := a.do(t, http.MethodGet, "/api/search?q=so", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var found []models.SearchCandidate
	if err := json.Unmarshal(data, &found); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(found) != 1 || found[0].ID != "solana" {
		t.Fatalf("expected only solana, got %+v", found)
	}
}

func TestSearchSessionLifecycle(t *testing.T) {
	a := newTestAPI(t)
	code, data := a.do(t, http.MethodPost, "/api/search/sessions", "")
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	var created sessionResponse
	if err := json.Unmarshal(data, &created); err != nil || created.ID == "" {
		t.Fatalf("decode session %s: %v", data, err)
	}
	path := "/api/search/sessions/" + created.ID

	if code, _ := a.do(t, http.MethodPut, path, `{"query":"s"}`); code != http.StatusOK {
		t.Fatalf("expected 200 on input, got %d", code)
	}
	if code, _ := a.do(t, http.MethodGet, path, ""); code != http.StatusOK {
		t.Fatalf("expected 200 on result, got %d", code)
	}
	if code, _ := a.do(t, http.MethodDelete, path, ""); code != http.StatusNoContent {
		t.Fatalf("expected 204 on close, got %d", code)
	}
	if code, _ := a.do(t, http.MethodGet, path, ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", code)
	}
}
