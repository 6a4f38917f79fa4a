package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/service/gateway"
	applogger "CryptoView/pkg/logger"
)

// Client implements repository.MarketData over the CoinGecko v3 API.
type Client struct {
	gw         *gateway.Gateway
	baseURL    string
	marketsTTL time.Duration
	ohlcTTL    time.Duration
	searchTTL  time.Duration
	maxRetries int
	minQuery   int
	logger     *applogger.Logger
}

type Option func(*Client)

// WithTTLs overrides the markets, OHLC and search freshness windows.
func WithTTLs(markets, ohlc, search time.Duration) Option {
	return func(c *Client) {
		c.marketsTTL = markets
		c.ohlcTTL = ohlc
		c.searchTTL = search
	}
}

func WithMaxRetries(n int) Option { return func(c *Client) { c.maxRetries = n } }

func WithMinQuery(n int) Option { return func(c *Client) { c.minQuery = n } }

func New(gw *gateway.Gateway, baseURL string, opts ...Option) *Client {
	c := &Client{
		gw:         gw,
		baseURL:    strings.TrimRight(baseURL, "/"),
		marketsTTL: 60 * time.Second,
		ohlcTTL:    5 * time.Minute,
		searchTTL:  30 * time.Second,
		maxRetries: 1,
		minQuery:   2,
		logger:     applogger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger allows DI to inject a logger after construction.
func (c *Client) SetLogger(l *applogger.Logger) {
	if l != nil {
		c.logger = l
	}
}

// ListTop returns the n largest assets by market cap, descending.
func (c *Client) ListTop(ctx context.Context, n int) []models.Asset {
	if n <= 0 {
		return []models.Asset{}
	}
	q := marketsQuery(n)
	return c.markets(ctx, fmt.Sprintf("top_%d", n), q)
}

// GetByIDs returns market snapshots for ids. Upstream ordering (market cap desc) is kept.
func (c *Client) GetByIDs(ctx context.Context, ids []string) []models.Asset {
	if len(ids) == 0 {
		return []models.Asset{}
	}
	q := marketsQuery(len(ids))
	q.Set("ids", strings.Join(ids, ","))
	return c.markets(ctx, "coins_"+strings.Join(ids, ","), q)
}

// Search returns symbol-search candidates in upstream order.
func (c *Client) Search(ctx context.Context, query string) []models.SearchCandidate {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < c.minQuery {
		return []models.SearchCandidate{}
	}
	u := c.baseURL + "/search?" + url.Values{"query": {query}}.Encode()
	res, _, err := gateway.Fetch[searchResponse](ctx, c.gw, gateway.Request{
		URL:        u,
		CacheKey:   "search_" + strings.ToLower(query),
		TTL:        c.searchTTL,
		MaxRetries: c.maxRetries,
		Endpoint:   "search",
	})
	if err != nil {
		c.logger.Warn("search unavailable", applogger.String("query", query), applogger.Error(err))
		return []models.SearchCandidate{}
	}
	if res.Coins == nil {
		return []models.SearchCandidate{}
	}
	return res.Coins
}

// GetOHLC returns candles for the last days, times converted to seconds.
// The series is returned as delivered; ordering and duplicates are the caller's concern.
func (c *Client) GetOHLC(ctx context.Context, id string, days int) []models.Candle {
	if id == "" || days <= 0 {
		return []models.Candle{}
	}
	q := url.Values{"vs_currency": {"usd"}, "days": {strconv.Itoa(days)}}
	u := fmt.Sprintf("%s/coins/%s/ohlc?%s", c.baseURL, url.PathEscape(id), q.Encode())
	rows, _, err := gateway.Fetch[[][]float64](ctx, c.gw, gateway.Request{
		URL:        u,
		CacheKey:   fmt.Sprintf("ohlc_%s_%d", id, days),
		TTL:        c.ohlcTTL,
		MaxRetries: c.maxRetries,
		Endpoint:   "ohlc",
	})
	if err != nil {
		c.logger.Warn("ohlc unavailable", applogger.String("id", id), applogger.Int("days", days), applogger.Error(err))
		return []models.Candle{}
	}
	return candlesFromRows(rows)
}

func (c *Client) markets(ctx context.Context, key string, q url.Values) []models.Asset {
	assets, _, err := gateway.Fetch[[]models.Asset](ctx, c.gw, gateway.Request{
		URL:        c.baseURL + "/coins/markets?" + q.Encode(),
		CacheKey:   key,
		TTL:        c.marketsTTL,
		MaxRetries: c.maxRetries,
		Endpoint:   "markets",
	})
	if err != nil {
		c.logger.Warn("markets unavailable", applogger.String("key", key), applogger.Error(err))
		return []models.Asset{}
	}
	if assets == nil {
		return []models.Asset{}
	}
	return assets
}

func marketsQuery(perPage int) url.Values {
	return url.Values{
		"vs_currency":             {"usd"},
		"order":                   {"market_cap_desc"},
		"per_page":                {strconv.Itoa(perPage)},
		"page":                    {"1"},
		"sparkline":               {"true"},
		"price_change_percentage": {"24h"},
	}
}

type searchResponse struct {
	Coins []models.SearchCandidate `json:"coins"`
}

// candlesFromRows converts [ms, open, high, low, close] rows; malformed rows are skipped.
func candlesFromRows(rows [][]float64) []models.Candle {
	out := make([]models.Candle, 0, len(rows))
	for _, r := range rows {
		if len(r) < 5 {
			continue
		}
		out = append(out, models.Candle{
			Time:  int64(r[0]) / 1000,
			Open:  r[1],
			High:  r[2],
			Low:   r[3],
			Close: r[4],
		})
	}
	return out
}
