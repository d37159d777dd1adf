package config

import (
	"fmt"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
)

// Default configuration values.
const (
	defaultServiceName      = "intentiq"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8080
	defaultSearchLimit      = 20
	defaultConcurrency      = 10
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBUser           = "postgres"
	defaultDBName           = "intentiq"
	defaultDBSSLMode        = "disable"
	defaultDBMaxConns       = 25
	defaultDBMaxIdleConns   = 5
	defaultRedisAddr        = "localhost:6379"
	defaultLogLevel         = "info"
	defaultFetchTimeoutSec  = 10
	defaultRedditBaseURL    = "https://www.reddit.com"
	defaultRedditUserAgent  = "IntentIQ/1.0 Lead Generation Tool"
	defaultTwitterBaseURL   = "https://api.twitter.com"
	defaultPostsPerKeyword  = 10
	defaultModelURL         = "https://api.openai.com"
	defaultModelName        = "gpt-4"
	defaultModelRPS         = 3
	defaultSMTPPort         = "587"
	defaultMonitorInterval  = time.Hour
	defaultTopKeywords      = 10
)

// Config holds all configuration for the intentiq service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Sources       SourcesConfig       `yaml:"sources"`
	Intent        IntentConfig        `yaml:"intent"`
	Quota         QuotaConfig         `yaml:"quota"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Billing       BillingConfig       `yaml:"billing"`
	Monitoring    MonitoringConfig    `yaml:"monitoring"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name               string `yaml:"name"`
	Version            string `yaml:"version"`
	Port               int    `env:"INTENTIQ_PORT" yaml:"port"`
	Debug              bool   `env:"APP_DEBUG"     yaml:"debug"`
	DefaultSearchLimit int    `yaml:"default_search_limit"`
	// CORSAllowedOrigins restricts browser callers. Empty allows any origin.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds Redis configuration for the event stream. Redis is
// optional; with no address the publisher is a no-op.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     yaml:"addr"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	Database int    `yaml:"database"`
	Stream   string `yaml:"stream"`
}

// SourcesConfig holds content source adapter configuration.
type SourcesConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	PostsPerKeyword int           `yaml:"posts_per_keyword"`
	Reddit          RedditConfig  `yaml:"reddit"`
	Twitter         TwitterConfig `yaml:"twitter"`
}

// RedditConfig holds Reddit search API settings.
type RedditConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// TwitterConfig holds Twitter API v2 settings. Without a bearer token the
// fetcher degrades to empty results.
type TwitterConfig struct {
	BaseURL     string `yaml:"base_url"`
	BearerToken string `env:"TWITTER_BEARER_TOKEN" yaml:"bearer_token"`
}

// IntentConfig holds classification settings.
type IntentConfig struct {
	// Strategy selects the primary classifier: "heuristic" or "model".
	Strategy    string      `env:"INTENT_STRATEGY" yaml:"strategy"`
	Concurrency int         `env:"INTENT_CONCURRENCY" yaml:"concurrency"`
	Model       ModelConfig `yaml:"model"`
}

// ModelConfig holds settings for the model-backed strategy.
type ModelConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `env:"MODEL_API_KEY" yaml:"api_key"`
	Name    string `yaml:"name"`
	// RequestsPerSecond throttles upstream model calls.
	RequestsPerSecond int `yaml:"requests_per_second"`
}

// QuotaConfig maps plan tiers to their limits. Validated at startup.
type QuotaConfig struct {
	Free       TierLimits `yaml:"free"`
	Starter    TierLimits `yaml:"starter"`
	Pro        TierLimits `yaml:"pro"`
	Enterprise TierLimits `yaml:"enterprise"`
}

// TierLimits is the YAML shape of one tier's limits.
type TierLimits struct {
	MaxKeywords       int `yaml:"max_keywords"`
	MaxSearchesPerDay int `yaml:"max_searches_per_day"`
	MaxSavedLeads     int `yaml:"max_saved_leads"`
}

// NotificationsConfig holds outbound alerting settings.
type NotificationsConfig struct {
	DashboardURL string     `yaml:"dashboard_url"`
	SMTP         SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds email delivery settings. Without a host the email
// channel is disabled.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"     yaml:"host"`
	Port     string `env:"SMTP_PORT"     yaml:"port"`
	User     string `env:"SMTP_USER"     yaml:"user"`
	Password string `env:"SMTP_PASSWORD" yaml:"password"`
	From     string `env:"SMTP_FROM"     yaml:"from"`
	FromName string `yaml:"from_name"`
}

// BillingConfig holds Stripe webhook settings.
type BillingConfig struct {
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"     yaml:"stripe_secret_key"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" yaml:"stripe_webhook_secret"`
}

// MonitoringConfig holds the background keyword-monitoring loop settings.
type MonitoringConfig struct {
	Enabled  bool          `env:"MONITOR_ENABLED" yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// Load loads configuration from the given path, applies defaults and env
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations that would misbehave at runtime rather
// than failing at first use.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("service port %d out of range", c.Service.Port)
	}
	if c.Intent.Strategy != "heuristic" && c.Intent.Strategy != "model" {
		return fmt.Errorf("unknown intent strategy %q", c.Intent.Strategy)
	}
	for tier, limits := range c.Quota.Tiers() {
		if limits.MaxKeywords <= 0 || limits.MaxSearchesPerDay <= 0 || limits.MaxSavedLeads <= 0 {
			return fmt.Errorf("tier %s has non-positive limits", tier)
		}
	}
	return nil
}

// Tiers returns the quota table keyed by plan tier.
func (q QuotaConfig) Tiers() map[domain.PlanTier]domain.PlanLimits {
	conv := func(t TierLimits) domain.PlanLimits {
		return domain.PlanLimits{
			MaxKeywords:       t.MaxKeywords,
			MaxSearchesPerDay: t.MaxSearchesPerDay,
			MaxSavedLeads:     t.MaxSavedLeads,
		}
	}
	return map[domain.PlanTier]domain.PlanLimits{
		domain.TierFree:       conv(q.Free),
		domain.TierStarter:    conv(q.Starter),
		domain.TierPro:        conv(q.Pro),
		domain.TierEnterprise: conv(q.Enterprise),
	}
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setSourcesDefaults(&cfg.Sources)
	setIntentDefaults(&cfg.Intent)
	setQuotaDefaults(&cfg.Quota)
	setNotificationsDefaults(&cfg.Notifications)
	setMonitoringDefaults(&cfg.Monitoring)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.DefaultSearchLimit == 0 {
		s.DefaultSearchLimit = defaultSearchLimit
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Addr == "" {
		r.Addr = defaultRedisAddr
	}
	if r.Stream == "" {
		r.Stream = "intentiq:events"
	}
}

func setSourcesDefaults(s *SourcesConfig) {
	if s.FetchTimeout == 0 {
		s.FetchTimeout = defaultFetchTimeoutSec * time.Second
	}
	if s.PostsPerKeyword == 0 {
		s.PostsPerKeyword = defaultPostsPerKeyword
	}
	if s.Reddit.BaseURL == "" {
		s.Reddit.BaseURL = defaultRedditBaseURL
	}
	if s.Reddit.UserAgent == "" {
		s.Reddit.UserAgent = defaultRedditUserAgent
	}
	if s.Twitter.BaseURL == "" {
		s.Twitter.BaseURL = defaultTwitterBaseURL
	}
}

func setIntentDefaults(i *IntentConfig) {
	if i.Strategy == "" {
		i.Strategy = "heuristic"
	}
	if i.Concurrency == 0 {
		i.Concurrency = defaultConcurrency
	}
	if i.Model.BaseURL == "" {
		i.Model.BaseURL = defaultModelURL
	}
	if i.Model.Name == "" {
		i.Model.Name = defaultModelName
	}
	if i.Model.RequestsPerSecond == 0 {
		i.Model.RequestsPerSecond = defaultModelRPS
	}
}

func setQuotaDefaults(q *QuotaConfig) {
	if q.Free == (TierLimits{}) {
		q.Free = TierLimits{MaxKeywords: 3, MaxSearchesPerDay: 5, MaxSavedLeads: 50}
	}
	if q.Starter == (TierLimits{}) {
		q.Starter = TierLimits{MaxKeywords: 10, MaxSearchesPerDay: 25, MaxSavedLeads: 500}
	}
	if q.Pro == (TierLimits{}) {
		q.Pro = TierLimits{MaxKeywords: 50, MaxSearchesPerDay: 200, MaxSavedLeads: 5000}
	}
	if q.Enterprise == (TierLimits{}) {
		q.Enterprise = TierLimits{MaxKeywords: 500, MaxSearchesPerDay: 2000, MaxSavedLeads: 50000}
	}
}

func setNotificationsDefaults(n *NotificationsConfig) {
	if n.SMTP.Port == "" {
		n.SMTP.Port = defaultSMTPPort
	}
	if n.SMTP.FromName == "" {
		n.SMTP.FromName = "IntentIQ"
	}
}

func setMonitoringDefaults(m *MonitoringConfig) {
	if m.Interval == 0 {
		m.Interval = defaultMonitorInterval
	}
}
