package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/service/cache"
	xhttp "CryptoView/pkg/http"
)

type upstream struct {
	srv    *httptest.Server
	calls  atomic.Int32
	status []int // status per call; 200 once exhausted
	body   atomic.Value
}

func newUpstream(t *testing.T, statuses ...int) *upstream {
	t.Helper()
	u := &upstream{status: statuses}
	u.body.Store(`[{"id":"bitcoin"}]`)
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(u.calls.Add(1))
		if n <= len(u.status) && u.status[n-1] != http.StatusOK {
			w.WriteHeader(u.status[n-1])
			return
		}
		_, _ = w.Write([]byte(u.body.Load().(string)))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newGateway(clk clock.Clock, backoff time.Duration) (*Gateway, *cache.BoundedCache) {
	c := cache.NewBoundedCache(16)
	return New(xhttp.NewClient(), c, WithClock(clk), WithBackoff(backoff)), c
}

func TestFetchJSONServesFreshCacheWithoutNetwork(t *testing.T) {
	u := newUpstream(t)
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	g, _ := newGateway(clk, 0)
	ctx := context.Background()
	req := Request{URL: u.srv.URL, CacheKey: "top_10", TTL: time.Minute, MaxRetries: 1}

	if _, src, err := g.FetchJSON(ctx, req); err != nil || src != SourceNetwork {
		t.Fatalf("first fetch: %v %v", src, err)
	}
	clk.Advance(time.Minute - time.Millisecond)
	if _, src, err := g.FetchJSON(ctx, req); err != nil || src != SourceCache {
		t.Fatalf("expected cache hit just before ttl, got %v %v", src, err)
	}
	if got := u.calls.Load(); got != 1 {
		t.Fatalf("expected 1 network call, got %d", got)
	}
	clk.Advance(2 * time.Millisecond)
	if _, src, _ := g.FetchJSON(ctx, req); src != SourceNetwork {
		t.Fatalf("expected refetch after ttl, got %v", src)
	}
	if got := u.calls.Load(); got != 2 {
		t.Fatalf("expected 2 network calls, got %d", got)
	}
}

func TestFetchJSONRetriesOnceAfterRateLimit(t *testing.T) {
	u := newUpstream(t, http.StatusTooManyRequests, http.StatusOK)
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	g, c := newGateway(clk, 2*time.Second)

	type result struct {
		body []byte
		src  Source
		err  error
	}
	done := make(chan result, 1)
	go func() {
		b, s, err := g.FetchJSON(context.Background(), Request{URL: u.srv.URL, CacheKey: "top_10", TTL: time.Minute, MaxRetries: 1})
		done <- result{b, s, err}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for clk.Pending() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("backoff timer was never scheduled")
		}
		time.Sleep(time.Millisecond)
	}
	if got := u.calls.Load(); got != 1 {
		t.Fatalf("expected retry to wait for backoff, calls=%d", got)
	}
	clk.Advance(2 * time.Second)

	res := <-done
	if res.err != nil || res.src != SourceNetwork || string(res.body) != `[{"id":"bitcoin"}]` {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok, _ := c.Get(context.Background(), "top_10"); !ok {
		t.Fatalf("expected cache to be populated")
	}
}

func TestFetchJSONFallsBackToStaleEntry(t *testing.T) {
	u := newUpstream(t, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests)
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	g, _ := newGateway(clk, 0)
	ctx := context.Background()
	req := Request{URL: u.srv.URL, CacheKey: "top_10", TTL: time.Minute, MaxRetries: 1}

	_, _, _ = g.FetchJSON(ctx, req)
	clk.Advance(10 * time.Minute)

	body, src, err := g.FetchJSON(ctx, req)
	if err != nil || src != SourceStale || string(body) != `[{"id":"bitcoin"}]` {
		t.Fatalf("expected stale fallback, got %q %v %v", body, src, err)
	}
	if got := u.calls.Load(); got != 3 {
		t.Fatalf("expected initial call plus two rate-limited attempts, got %d", got)
	}
}

func TestFetchJSONWithoutCacheReportsUnavailable(t *testing.T) {
	u := newUpstream(t, http.StatusTooManyRequests, http.StatusTooManyRequests)
	g, c := newGateway(clock.NewManual(time.Unix(0, 0)), 0)

	_, _, err := g.FetchJSON(context.Background(), Request{URL: u.srv.URL, CacheKey: "top_10", TTL: time.Minute, MaxRetries: 1})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected nothing cached")
	}
}

func TestFetchJSONDoesNotRetryOtherErrors(t *testing.T) {
	u := newUpstream(t, http.StatusInternalServerError)
	g, _ := newGateway(clock.NewManual(time.Unix(0, 0)), 0)

	_, _, err := g.FetchJSON(context.Background(), Request{URL: u.srv.URL, CacheKey: "k", TTL: time.Minute, MaxRetries: 3})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if got := u.calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestFetchDecodesTypedPayload(t *testing.T) {
	u := newUpstream(t)
	g, _ := newGateway(clock.NewManual(time.Unix(0, 0)), 0)

	out, _, err := Fetch[[]struct {
		ID string `json:"id"`
	}](context.Background(), g, Request{URL: u.srv.URL, CacheKey: "k", TTL: time.Minute})
	if err != nil || len(out) != 1 || out[0].ID != "bitcoin" {
		t.Fatalf("unexpected decode %+v %v", out, err)
	}
}
