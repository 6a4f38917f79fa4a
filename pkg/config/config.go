package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	xutil "CryptoView/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logging struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Output     string `yaml:"output"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
			Topic          string        `yaml:"topic"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Market struct {
		BaseURL       string        `yaml:"base_url"`
		TopN          int           `yaml:"top_n"`
		MarketsTTL    time.Duration `yaml:"markets_ttl"`
		OHLCTTL       time.Duration `yaml:"ohlc_ttl"`
		SearchTTL     time.Duration `yaml:"search_ttl"`
		Backoff       time.Duration `yaml:"backoff"`
		MaxRetries    int           `yaml:"max_retries"`
		Timeout       time.Duration `yaml:"timeout"`
		CacheCapacity int           `yaml:"cache_capacity"`
		SharedCache   bool          `yaml:"shared_cache"`
	} `yaml:"market"`
	Search struct {
		QuietPeriod time.Duration `yaml:"quiet_period"`
		MinQuery    int           `yaml:"min_query"`
		MaxResults  int           `yaml:"max_results"`
		SessionTTL  time.Duration `yaml:"session_ttl"`
	} `yaml:"search"`
	Analysis struct {
		APIKey        string        `yaml:"api_key"`
		Model         string        `yaml:"model"`
		BaseURL       string        `yaml:"base_url"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
		WebSearch     bool          `yaml:"web_search"`
		Timeout       time.Duration `yaml:"timeout"`
		RefreshBurst  float64       `yaml:"refresh_burst"`
		RefreshPerSec float64       `yaml:"refresh_per_sec"`
	} `yaml:"analysis"`
	Storage struct {
		Backend string `yaml:"backend"`
		Memory  struct {
			MaxItems int `yaml:"max_items"`
		} `yaml:"memory"`
		Redis struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			Prefix       string        `yaml:"prefix"`
			PoolSize     int           `yaml:"pool_size"`
			MinIdleConns int           `yaml:"min_idle_conns"`
			LocalTTL     time.Duration `yaml:"local_ttl"`
		} `yaml:"redis"`
	} `yaml:"storage"`
	Scheduler struct {
		Refresh string        `yaml:"refresh"`
		Sweep   string        `yaml:"sweep"`
		LockTTL time.Duration `yaml:"lock_ttl"`
	} `yaml:"scheduler"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads .env (if present) and config from YAML, then overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Analysis.APIKey = v
	} else if v := os.Getenv("API_KEY"); v != "" {
		c.Analysis.APIKey = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.Market.BaseURL = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Storage.Redis.Host = host
		if ok {
			c.Storage.Redis.Port = xutil.ParseIntDefault(port, c.Storage.Redis.Port)
		}
	}
	c.Server.Port = xutil.ParseIntDefault(os.Getenv("HTTP_PORT"), c.Server.Port)
	c.Metrics.Enabled = xutil.ParseBoolDefault(os.Getenv("METRICS_ENABLED"), c.Metrics.Enabled)
	c.Kafka.Enabled = xutil.ParseBoolDefault(os.Getenv("KAFKA_ENABLED"), c.Kafka.Enabled)
	c.ClickHouse.Enabled = xutil.ParseBoolDefault(os.Getenv("CLICKHOUSE_ENABLED"), c.ClickHouse.Enabled)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Market.TopN <= 0 {
		c.Market.TopN = 10
	}
	if c.Market.MarketsTTL <= 0 {
		c.Market.MarketsTTL = 60 * time.Second
	}
	if c.Market.OHLCTTL <= 0 {
		c.Market.OHLCTTL = 5 * time.Minute
	}
	if c.Market.SearchTTL <= 0 {
		c.Market.SearchTTL = 30 * time.Second
	}
	if c.Market.Backoff <= 0 {
		c.Market.Backoff = 2 * time.Second
	}
	// negative disables retries
	if c.Market.MaxRetries == 0 {
		c.Market.MaxRetries = 1
	} else if c.Market.MaxRetries < 0 {
		c.Market.MaxRetries = 0
	}
	if c.Market.Timeout <= 0 {
		c.Market.Timeout = 15 * time.Second
	}
	if c.Market.CacheCapacity <= 0 {
		c.Market.CacheCapacity = 512
	}
	if c.Search.QuietPeriod <= 0 {
		c.Search.QuietPeriod = 500 * time.Millisecond
	}
	if c.Search.MinQuery <= 0 {
		c.Search.MinQuery = 2
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 8
	}
	if c.Search.SessionTTL <= 0 {
		c.Search.SessionTTL = 10 * time.Minute
	}
	if c.Analysis.Model == "" {
		c.Analysis.Model = "gemini-2.5-flash"
	}
	if c.Analysis.BaseURL == "" {
		c.Analysis.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Analysis.CacheTTL <= 0 {
		c.Analysis.CacheTTL = 15 * time.Minute
	}
	if c.Analysis.Timeout <= 0 {
		c.Analysis.Timeout = 60 * time.Second
	}
	if c.Analysis.RefreshBurst <= 0 {
		c.Analysis.RefreshBurst = 3
	}
	if c.Analysis.RefreshPerSec <= 0 {
		c.Analysis.RefreshPerSec = 0.05
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = "cryptoview"
	}
	if c.Scheduler.Sweep == "" {
		c.Scheduler.Sweep = "@every 1m"
	}
	if c.Scheduler.LockTTL <= 0 {
		c.Scheduler.LockTTL = 30 * time.Second
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "cryptoview.events"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Storage.Backend != "memory" && c.Storage.Backend != "redis" {
		return fmt.Errorf("storage.backend must be 'memory' or 'redis', got '%s'", c.Storage.Backend)
	}
	if c.Storage.Backend == "redis" && c.Storage.Redis.Host == "" {
		return fmt.Errorf("storage.redis.host is required for redis backend")
	}
	if c.Market.SharedCache && c.Storage.Backend != "redis" {
		return fmt.Errorf("market.shared_cache requires the redis storage backend")
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka to be enabled")
	}
	return nil
}
