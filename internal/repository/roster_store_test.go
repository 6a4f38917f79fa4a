package repository

import (
	"context"
	"testing"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	"CryptoView/pkg/cache"
)

func newKV(t *testing.T) (*cache.MemoryCache, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	kv := cache.NewMemoryCache(cache.WithMemoryClock(clk))
	t.Cleanup(func() { _ = kv.Close() })
	return kv, clk
}

func TestRosterStoreRoundTrip(t *testing.T) {
	kv, _ := newKV(t)
	s := NewCacheRosterStore(kv)
	ctx := context.Background()

	ids, err := s.LoadIDs(ctx)
	if err != nil || ids != nil {
		t.Fatalf("expected nothing persisted, got %v %v", ids, err)
	}
	if err := s.SaveIDs(ctx, []string{"bitcoin", " solana ", "bitcoin"}); err != nil {
		t.Fatalf("SaveIDs: %v", err)
	}
	ids, err = s.LoadIDs(ctx)
	if err != nil || len(ids) != 2 || ids[0] != "bitcoin" || ids[1] != "solana" {
		t.Fatalf("unexpected ids %v %v", ids, err)
	}
}

func TestRosterStoreNeverPersistsEmpty(t *testing.T) {
	kv, _ := newKV(t)
	s := NewCacheRosterStore(kv)
	ctx := context.Background()

	_ = s.SaveIDs(ctx, []string{"ethereum"})
	if err := s.SaveIDs(ctx, nil); err != nil {
		t.Fatalf("SaveIDs(nil): %v", err)
	}
	ids, _ := s.LoadIDs(ctx)
	if len(ids) != 1 || ids[0] != "ethereum" {
		t.Fatalf("empty save should keep previous selection, got %v", ids)
	}
}

func TestAnalysisStoreFreshness(t *testing.T) {
	kv, clk := newKV(t)
	s := NewCacheAnalysisStore(kv, clk, 0)
	ctx := context.Background()
	doc := &models.CombinedAnalysis{TechnicalAnalysis: models.AnalysisResult{Summary: "plan"}}

	if _, ok := s.Get(ctx, "bitcoin"); ok {
		t.Fatalf("expected miss on empty store")
	}
	if err := s.Put(ctx, "bitcoin", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clk.Advance(15*time.Minute - time.Second)
	got, ok := s.Get(ctx, "bitcoin")
	if !ok || got.TechnicalAnalysis.Summary != "plan" {
		t.Fatalf("expected fresh hit, got %v %v", got, ok)
	}
	clk.Advance(2 * time.Second)
	if _, ok := s.Get(ctx, "bitcoin"); ok {
		t.Fatalf("expected stale entry after 15 minutes")
	}
}

func TestAnalysisStoreInvalidate(t *testing.T) {
	kv, clk := newKV(t)
	s := NewCacheAnalysisStore(kv, clk, time.Hour)
	ctx := context.Background()

	_ = s.Put(ctx, "solana", &models.CombinedAnalysis{})
	if err := s.Invalidate(ctx, "solana"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := s.Get(ctx, "solana"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}
