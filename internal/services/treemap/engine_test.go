package treemap

import (
	"testing"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/services/features"
)

func testAssets() []models.Asset {
	return []models.Asset{
		{ID: "bitcoin", Symbol: "btc", MarketCap: 1.2e12, CurrentPrice: 60000, PriceChangePercentage24h: 2.5,
			Sparkline7d: &models.Sparkline{Price: []float64{1, 2, 3, 4, 5, 6, 7}}},
		{ID: "ethereum", Symbol: "eth", MarketCap: 4e11, CurrentPrice: 3000, PriceChangePercentage24h: -7},
		{ID: "ghost", Symbol: "gho", MarketCap: 0},
	}
}

func TestEngineLayoutAssets(t *testing.T) {
	e := NewEngine(DefaultOptions())
	out := e.Layout(testAssets(), 800, 600)
	if len(out.Tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(out.Tiles))
	}
	btc := out.Tiles[0]
	if btc.ID != "bitcoin" || btc.Tone != features.ToneUp {
		t.Fatalf("unexpected first tile %+v", btc)
	}
	if !btc.Labels.Sparkline || len(btc.Sparkline) != 7 {
		t.Fatalf("expected sparkline on large cell, got %+v", btc.Labels)
	}
	if out.Tiles[1].Tone != features.ToneStrongDn {
		t.Fatalf("unexpected tone %v", out.Tiles[1].Tone)
	}
}

func TestEngineMemoizes(t *testing.T) {
	e := NewEngine(DefaultOptions())
	assets := testAssets()
	e.Layout(assets, 800, 600)
	e.Layout(assets, 800, 600)
	if e.Runs() != 1 {
		t.Fatalf("expected a single run, got %d", e.Runs())
	}

	e.Layout(assets, 800, 601)
	if e.Runs() != 2 {
		t.Fatalf("viewport change should recompute, runs=%d", e.Runs())
	}

	changed := testAssets()
	changed[1].MarketCap = 5e11
	e.Layout(changed, 800, 601)
	if e.Runs() != 3 {
		t.Fatalf("weight change should recompute, runs=%d", e.Runs())
	}
}

func TestEngineZeroViewport(t *testing.T) {
	out := NewEngine(DefaultOptions()).Layout(testAssets(), 0, 0)
	if len(out.Tiles) != 0 {
		t.Fatalf("expected empty layout, got %d tiles", len(out.Tiles))
	}
}
