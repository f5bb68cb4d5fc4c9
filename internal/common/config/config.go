// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	APIs     APIsConfig              `mapstructure:"apis"`
	Safety   SafetyConfig            `mapstructure:"safety"`
	Quota    QuotaConfig             `mapstructure:"quota"`
	HTTP     HTTPConfig              `mapstructure:"http"`
	Registry RegistryConfig          `mapstructure:"registry"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single address shorthand
	MenuIndex string   `mapstructure:"menu_index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	Extraction ExtractionAPIConfig `mapstructure:"extraction"`
}

// ExtractionAPIConfig points at the service that turns a menu source into
// item candidates.
type ExtractionAPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// Cache backends for extracted menus.
const (
	CacheBackendRedis         = "redis"
	CacheBackendPostgres      = "postgres"
	CacheBackendElasticsearch = "elasticsearch"
)

// SafetyConfig tunes the menu cache policy.
type SafetyConfig struct {
	CacheBackend     string `mapstructure:"cache_backend"`
	FreshnessHours   int    `mapstructure:"freshness_hours"`
	MinCachedItems   int    `mapstructure:"min_cached_items"`
	ShortQueryLength int    `mapstructure:"short_query_length"`
	ProfileCacheTTL  int    `mapstructure:"profile_cache_ttl"` // seconds
}

// FreshnessWindow returns how long a cached extraction is served.
func (s SafetyConfig) FreshnessWindow() time.Duration {
	return time.Duration(s.FreshnessHours) * time.Hour
}

// Quota ledger backends.
const (
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

// QuotaConfig holds the metered scrape allowance.
type QuotaConfig struct {
	DailyScrapeLimit int    `mapstructure:"daily_scrape_limit"`
	LedgerBackend    string `mapstructure:"ledger_backend"`
	CreditTimeout    int    `mapstructure:"credit_timeout"` // milliseconds
}

// HTTPConfig holds the health, metrics and API listener.
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// Address returns the listen address.
func (h HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

// RegistryConfig locates the activity registry checked at startup.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
