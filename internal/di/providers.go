package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"CryptoView/internal/domain/repository"
	"CryptoView/internal/domain/service"
	"CryptoView/internal/handler/api"
	internalrepo "CryptoView/internal/repository"
	"CryptoView/internal/scheduler"
	icache "CryptoView/internal/service/cache"
	"CryptoView/internal/service/coingecko"
	"CryptoView/internal/service/gateway"
	"CryptoView/internal/service/gemini"
	"CryptoView/internal/service/ratelimit"
	"CryptoView/internal/service/stream"
	"CryptoView/internal/usecase"
	"CryptoView/pkg/cache"
	pkgch "CryptoView/pkg/clickhouse"
	"CryptoView/pkg/config"
	xhttp "CryptoView/pkg/http"
	pkgkafka "CryptoView/pkg/kafka"
	applogger "CryptoView/pkg/logger"
	"CryptoView/pkg/metrics"
	"CryptoView/pkg/server"
)

const serviceName = "cryptoview"

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the application logger. Error batches go to Kafka when
// the collector is enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Service:        serviceName,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("service", serviceName)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideRedisCache connects to Redis when it is the storage backend.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if cfg.Storage.Backend != "redis" {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
		cache.WithRedisAuth(cfg.Storage.Redis.Password, cfg.Storage.Redis.DB),
		cache.WithRedisPool(cfg.Storage.Redis.PoolSize, cfg.Storage.Redis.MinIdleConns, 0),
		cache.WithRedisPrefix(cfg.Storage.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheService is the key-value store behind the roster list, the
// analysis cache and the refresh lock.
func ProvideCacheService(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	if rc != nil {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Storage.Memory.MaxItems),
			cache.WithLayeredMemoryTTL(cfg.Storage.Redis.LocalTTL),
		)
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Storage.Memory.MaxItems))
}

// ProvideEntryCache backs the gateway. Entries are shared through Redis only
// when market.shared_cache is set.
func ProvideEntryCache(cfg *config.Config, rc *cache.RedisCache) icache.EntryCache {
	if cfg.Market.SharedCache && rc != nil {
		return icache.NewRedisEntryCache(rc.Client(), rc.Prefix()+":gw:", 0)
	}
	return icache.NewBoundedCache(cfg.Market.CacheCapacity)
}

// ProvideMarketData builds the CoinGecko client on top of the caching gateway.
func ProvideMarketData(cfg *config.Config, entries icache.EntryCache, m repository.Metrics, l *applogger.Logger) repository.MarketData {
	gw := gateway.New(
		xhttp.NewClient(xhttp.WithTimeout(cfg.Market.Timeout)),
		entries,
		gateway.WithBackoff(cfg.Market.Backoff),
		gateway.WithMetrics(m),
		gateway.WithLogger(l),
	)
	cg := coingecko.New(gw, cfg.Market.BaseURL,
		coingecko.WithTTLs(cfg.Market.MarketsTTL, cfg.Market.OHLCTTL, cfg.Market.SearchTTL),
		coingecko.WithMaxRetries(cfg.Market.MaxRetries),
		coingecko.WithMinQuery(cfg.Search.MinQuery),
	)
	cg.SetLogger(l)
	return cg
}

// ProvideAnalysisGenerator builds the Gemini client. A missing key is not an
// error here; generation reports it per request.
func ProvideAnalysisGenerator(cfg *config.Config, l *applogger.Logger) service.AnalysisGenerator {
	c := gemini.New(
		gemini.WithAPIKey(cfg.Analysis.APIKey),
		gemini.WithBaseURL(cfg.Analysis.BaseURL),
		gemini.WithModel(cfg.Analysis.Model),
		gemini.WithWebSearch(cfg.Analysis.WebSearch),
		gemini.WithTimeout(cfg.Analysis.Timeout),
	)
	c.SetLogger(l)
	if !c.HasCredential() {
		l.Warn("analysis api key not configured, analysis will return placeholders")
	}
	return c
}

// ProvideEventPublisher publishes domain events to Kafka, or drops them when
// Kafka is disabled.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NoopEventPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideClickHouseClient connects to ClickHouse and creates the snapshot
// table, or returns nil when the archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SnapshotSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotRecorder archives roster snapshots to ClickHouse when enabled.
func ProvideSnapshotRecorder(ch *pkgch.Client, l *applogger.Logger) repository.SnapshotRecorder {
	if ch == nil {
		return internalrepo.NoopSnapshotRecorder{}
	}
	r := internalrepo.NewClickHouseSnapshotRecorder(ch)
	r.SetLogger(l)
	return r
}

// ProvideRoster creates the market roster.
func ProvideRoster(
	cfg *config.Config,
	market repository.MarketData,
	kv cache.Service,
	events repository.EventPublisher,
	archive repository.SnapshotRecorder,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.MarketRoster {
	r := usecase.NewMarketRoster(market, internalrepo.NewCacheRosterStore(kv),
		usecase.WithTopN(cfg.Market.TopN),
		usecase.WithRosterEvents(events),
		usecase.WithRosterArchive(archive),
		usecase.WithRosterMetrics(m),
	)
	r.SetLogger(l)
	return r
}

// ProvideAnalysisViewers creates the per-viewer analysis orchestrators over a
// shared analysis cache.
func ProvideAnalysisViewers(
	cfg *config.Config,
	gen service.AnalysisGenerator,
	kv cache.Service,
	events repository.EventPublisher,
	m repository.Metrics,
	roster *usecase.MarketRoster,
	market repository.MarketData,
	l *applogger.Logger,
) *usecase.AnalysisViewers {
	store := internalrepo.NewCacheAnalysisStore(kv, nil, cfg.Analysis.CacheTTL)
	store.SetLogger(l)
	return usecase.NewAnalysisViewers(usecase.AnalysisDeps{
		Generator: gen,
		Store:     store,
		Events:    events,
		Metrics:   m,
		Logger:    l,
	}, roster, market)
}

// ProvideSearchOptions maps the search section of the config.
func ProvideSearchOptions(cfg *config.Config) usecase.SearchOptions {
	return usecase.SearchOptions{
		QuietPeriod: cfg.Search.QuietPeriod,
		MinQuery:    cfg.Search.MinQuery,
		MaxResults:  cfg.Search.MaxResults,
	}
}

// ProvideSearchSessions creates the debounced search session registry.
func ProvideSearchSessions(cfg *config.Config, market repository.MarketData, opt usecase.SearchOptions, l *applogger.Logger) *usecase.SearchSessions {
	s := usecase.NewSearchSessions(market, nil, opt, cfg.Search.SessionTTL)
	s.SetLogger(l)
	return s
}

// ProvideHub creates the websocket hub.
func ProvideHub(l *applogger.Logger) *stream.Hub {
	h := stream.NewHub()
	h.SetLogger(l)
	return h
}

// ProvideLimiter creates the per-viewer token buckets.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New(nil)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	roster *usecase.MarketRoster,
	market repository.MarketData,
	viewers *usecase.AnalysisViewers,
	sessions *usecase.SearchSessions,
	hub *stream.Hub,
	limiter *ratelimit.Limiter,
	opt usecase.SearchOptions,
) *api.Handler {
	return api.NewHandler(l, api.Deps{
		Roster:        roster,
		MarketData:    market,
		Charts:        usecase.NewChartUseCase(market),
		Viewers:       viewers,
		Sessions:      sessions,
		Hub:           hub,
		Limiter:       limiter,
		SearchOpts:    opt,
		RefreshBurst:  cfg.Analysis.RefreshBurst,
		RefreshPerSec: cfg.Analysis.RefreshPerSec,
	})
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.Handler, l *applogger.Logger) *xhttp.Server {
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(path),
		xhttp.WithLogger(l),
	)
}

// ProvideScheduler creates the cron jobs. Idle viewers, search sessions and
// rate-limit buckets are swept after the search session TTL.
func ProvideScheduler(
	cfg *config.Config,
	roster *usecase.MarketRoster,
	kv cache.Service,
	viewers *usecase.AnalysisViewers,
	sessions *usecase.SearchSessions,
	limiter *ratelimit.Limiter,
	l *applogger.Logger,
) *scheduler.Scheduler {
	s := scheduler.New(context.Background(), roster, kv, cfg.Scheduler.LockTTL)
	s.SetLogger(l)
	idle := cfg.Search.SessionTTL
	s.AddSweeper("search_sessions", sessions.Sweep)
	s.AddSweeper("analysis_viewers", func() int { return viewers.Sweep(idle) })
	s.AddSweeper("rate_limits", func() int { return limiter.Prune(idle) })
	return s
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	roster *usecase.MarketRoster,
	hub *stream.Hub,
	sessions *usecase.SearchSessions,
	sched *scheduler.Scheduler,
	kv cache.Service,
	events repository.EventPublisher,
	archive repository.SnapshotRecorder,
) *server.App {
	// the layered cache closes its redis client too
	closers := []io.Closer{events, archive}
	if c, ok := kv.(io.Closer); ok {
		closers = append(closers, c)
	}
	return server.New(cfg, l, srv, server.Components{
		Roster:    roster,
		Hub:       hub,
		Sessions:  sessions,
		Scheduler: sched,
		Closers:   closers,
	})
}
