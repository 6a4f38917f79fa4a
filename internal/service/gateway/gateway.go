package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/repository"
	"CryptoView/internal/service/cache"
	xhttp "CryptoView/pkg/http"
	applogger "CryptoView/pkg/logger"
	"CryptoView/pkg/metrics"
)

// ErrUnavailable is returned when the upstream failed and nothing is cached for the key.
var ErrUnavailable = errors.New("gateway: upstream unavailable and no cached entry")

// Source tells where a response body came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceStale   Source = "stale"
)

// Request describes one cached fetch.
type Request struct {
	URL        string
	CacheKey   string
	TTL        time.Duration
	MaxRetries int
	// Endpoint labels metrics and logs; defaults to the cache key.
	Endpoint string
}

// Gateway fetches JSON with a time-boxed cache, a fixed backoff on HTTP 429
// and a stale-entry fallback when the upstream fails.
type Gateway struct {
	client  *xhttp.Client
	cache   cache.EntryCache
	clk     clock.Clock
	backoff time.Duration
	logger  *applogger.Logger
	metrics repository.Metrics
}

type Option func(*Gateway)

func WithClock(c clock.Clock) Option { return func(g *Gateway) { g.clk = c } }

func WithBackoff(d time.Duration) Option { return func(g *Gateway) { g.backoff = d } }

func WithMetrics(m repository.Metrics) Option { return func(g *Gateway) { g.metrics = m } }

func WithLogger(l *applogger.Logger) Option { return func(g *Gateway) { g.logger = l } }

func New(client *xhttp.Client, c cache.EntryCache, opts ...Option) *Gateway {
	g := &Gateway{
		client:  client,
		cache:   c,
		clk:     clock.Real(),
		backoff: 2 * time.Second,
		logger:  applogger.NewNop(),
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetLogger allows DI to inject a logger after construction.
func (g *Gateway) SetLogger(l *applogger.Logger) {
	if l != nil {
		g.logger = l
	}
}

// FetchJSON returns the raw JSON body for r. A fresh cache entry short-circuits
// the network. On failure an entry of any age is served instead; only when none
// exists is ErrUnavailable returned.
func (g *Gateway) FetchJSON(ctx context.Context, r Request) ([]byte, Source, error) {
	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = r.CacheKey
	}

	cached, hasCached := g.lookup(ctx, r.CacheKey)
	if hasCached && cached.Fresh(g.clk.Now(), r.TTL) {
		g.metrics.RecordCacheResult(endpoint, "hit")
		return cached.Data, SourceCache, nil
	}
	g.metrics.RecordCacheResult(endpoint, "miss")

	start := g.clk.Now()
	body, err := g.fetchWithRetry(ctx, r.URL, endpoint, r.MaxRetries)
	g.metrics.RecordLatency("fetch_"+endpoint, g.clk.Now().Sub(start).Seconds())
	if err == nil {
		entry := cache.Entry{Timestamp: g.clk.Now(), Data: body}
		if perr := g.cache.Put(ctx, r.CacheKey, entry); perr != nil {
			g.logger.Warn("gateway cache write failed",
				applogger.String("key", r.CacheKey),
				applogger.Error(perr),
			)
		}
		return body, SourceNetwork, nil
	}

	g.metrics.RecordError("upstream_" + endpoint)
	if hasCached {
		g.metrics.RecordCacheResult(endpoint, "stale")
		g.logger.Warn("upstream failed, serving stale cache",
			applogger.String("key", r.CacheKey),
			applogger.Duration("age_ms", g.clk.Now().Sub(cached.Timestamp)),
			applogger.Error(err),
		)
		return cached.Data, SourceStale, nil
	}

	g.logger.Error("upstream failed with no cached fallback",
		applogger.String("key", r.CacheKey),
		applogger.Error(err),
	)
	return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Fetch decodes the gateway response for r into T.
func Fetch[T any](ctx context.Context, g *Gateway, r Request) (T, Source, error) {
	var out T
	body, src, err := g.FetchJSON(ctx, r)
	if err != nil {
		return out, src, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, src, fmt.Errorf("decode %s: %w", r.CacheKey, err)
	}
	return out, src, nil
}

func (g *Gateway) lookup(ctx context.Context, key string) (cache.Entry, bool) {
	e, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("gateway cache read failed", applogger.String("key", key), applogger.Error(err))
		return cache.Entry{}, false
	}
	return e, ok
}

func (g *Gateway) fetchWithRetry(ctx context.Context, url, endpoint string, retries int) ([]byte, error) {
	for {
		body, err := g.client.FetchBytes(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: url})
		status := xhttp.StatusCode(err)
		if err == nil {
			status = http.StatusOK
		}
		g.metrics.RecordUpstream(endpoint, status)

		if err == nil {
			if !json.Valid(body) {
				return nil, fmt.Errorf("invalid json from %s", endpoint)
			}
			return body, nil
		}
		if status != http.StatusTooManyRequests || retries <= 0 {
			return nil, err
		}

		retries--
		g.logger.Info("rate limited, backing off",
			applogger.String("endpoint", endpoint),
			applogger.Duration("backoff_ms", g.backoff),
			applogger.Int("retries_left", retries),
		)
		if werr := g.wait(ctx, g.backoff); werr != nil {
			return nil, werr
		}
	}
}

func (g *Gateway) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	t := g.clk.AfterFunc(d, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}
