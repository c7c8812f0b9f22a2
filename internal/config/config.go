// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all harvester configuration knobs loaded via Viper.
type Config struct {
	Portal  PortalConfig  `mapstructure:"portal"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	DB      DBConfig      `mapstructure:"db"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PortalConfig points at the judiciary search portal.
type PortalConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CrawlerConfig governs query fan-out and retry behavior.
type CrawlerConfig struct {
	Concurrency  int    `mapstructure:"concurrency"`
	MaxInFlight  int    `mapstructure:"max_in_flight"`
	RetryPolicy  string `mapstructure:"retry_policy"`
	RetryDelayMs int    `mapstructure:"retry_delay_ms"`
	MaxRetries   int    `mapstructure:"max_retries"`
	StartDate    string `mapstructure:"start_date"`
	EndDate      string `mapstructure:"end_date"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// IngestConfig governs the parse/normalize worker pool.
type IngestConfig struct {
	Partitions int `mapstructure:"partitions"`
	BatchLimit int `mapstructure:"batch_limit"`
}

// ServerConfig controls the metrics/health HTTP listener.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CASESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("portal.base_url", "http://casesearch.courts.state.md.us")
	v.SetDefault("portal.user_agent", "casesearch-harvester/1.0")
	v.SetDefault("portal.timeout_seconds", 30)
	v.SetDefault("crawler.concurrency", 8)
	v.SetDefault("crawler.max_in_flight", 32)
	v.SetDefault("crawler.retry_policy", "unbounded")
	v.SetDefault("crawler.retry_delay_ms", 1000)
	v.SetDefault("crawler.max_retries", 0)
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("ingest.partitions", 10)
	v.SetDefault("ingest.batch_limit", 1000)
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.base_url is required")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.MaxInFlight <= 0 {
		return fmt.Errorf("crawler.max_in_flight must be > 0")
	}
	if c.Ingest.Partitions <= 0 {
		return fmt.Errorf("ingest.partitions must be > 0")
	}
	if c.Ingest.BatchLimit <= 0 {
		return fmt.Errorf("ingest.batch_limit must be > 0")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// PortalTimeout converts the configured timeout into a duration.
func (c Config) PortalTimeout() time.Duration {
	return time.Duration(c.Portal.TimeoutSeconds) * time.Second
}

// RetryDelay converts the configured retry delay into a duration.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Crawler.RetryDelayMs) * time.Millisecond
}
