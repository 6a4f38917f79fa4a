package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/service/cache"
	"CryptoView/internal/service/gateway"
	xhttp "CryptoView/pkg/http"
)

const marketsBody = `[
 {"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":60000,"market_cap":1200000000000,"total_volume":30000000000,
  "sparkline_in_7d":{"price":[1,2,3,4,5,6]}},
 {"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":3000,"market_cap":360000000000,"total_volume":15000000000}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	gw := gateway.New(xhttp.NewClient(), cache.NewBoundedCache(32),
		gateway.WithClock(clock.NewManual(time.Unix(1_700_000_000, 0))),
		gateway.WithBackoff(0),
	)
	return New(gw, srv.URL), &calls
}

func TestListTopBuildsMarketsQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/coins/markets" || q.Get("per_page") != "10" || q.Get("order") != "market_cap_desc" ||
			q.Get("sparkline") != "true" || q.Get("vs_currency") != "usd" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(marketsBody))
	})

	assets := c.ListTop(context.Background(), 10)
	if len(assets) != 2 || assets[0].ID != "bitcoin" {
		t.Fatalf("unexpected assets %+v", assets)
	}
	if len(assets[0].SparklinePrices()) != 6 {
		t.Fatalf("expected sparkline to decode")
	}
}

func TestGetByIDsUsesIDsAndCaches(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ids") != "bitcoin,ethereum" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(marketsBody))
	})

	ctx := context.Background()
	_ = c.GetByIDs(ctx, []string{"bitcoin", "ethereum"})
	got := c.GetByIDs(ctx, []string{"bitcoin", "ethereum"})
	if len(got) != 2 {
		t.Fatalf("unexpected assets %+v", got)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected second call to hit the cache, calls=%d", calls.Load())
	}
}

func TestReadPathsReturnEmptyOnFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	ctx := context.Background()
	if got := c.ListTop(ctx, 10); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if got := c.GetOHLC(ctx, "bitcoin", 30); len(got) != 0 {
		t.Fatalf("expected empty candles, got %#v", got)
	}
	if got := c.Search(ctx, "bit"); len(got) != 0 {
		t.Fatalf("expected empty search, got %#v", got)
	}
}

func TestSearchSkipsShortQueries(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"coins":[]}`))
	})
	if got := c.Search(context.Background(), " b "); len(got) != 0 {
		t.Fatalf("expected no results")
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no request for short query")
	}
}

func TestSearchDecodesCoins(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("query") != "sol" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"coins":[{"id":"solana","name":"Solana","symbol":"SOL","market_cap_rank":5,"thumb":"t.png"},{"id":"solend","name":"Solend","symbol":"SLND","market_cap_rank":null,"thumb":"s.png"}]}`))
	})
	got := c.Search(context.Background(), "sol")
	if len(got) != 2 || got[0].ID != "solana" || got[0].MarketCapRank == nil || *got[0].MarketCapRank != 5 || got[1].MarketCapRank != nil {
		t.Fatalf("unexpected candidates %+v", got)
	}
}

func TestGetOHLCConvertsMillisAndSkipsMalformedRows(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin/ohlc" || r.URL.Query().Get("days") != "7" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`[[1700000000000,1,2,0.5,1.5],[1700000360000,1.5,2.5],[1700000720000,1.5,3,1,2]]`))
	})
	got := c.GetOHLC(context.Background(), "bitcoin", 7)
	if len(got) != 2 {
		t.Fatalf("expected malformed row to be skipped, got %+v", got)
	}
	if got[0].Time != 1700000000 || got[1].Close != 2 {
		t.Fatalf("unexpected candles %+v", got)
	}
}
