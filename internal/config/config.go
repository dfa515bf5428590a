package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Session   SessionConfig   `mapstructure:"session"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// UpstreamConfig points at the REST backend that owns auth, trainings,
// questionnaires and results. The gateway never talks to a database of
// its own.
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout_seconds"`
}

type SessionConfig struct {
	// RefreshInterval is how often the background task checks token
	// expiry. Must be shorter than the upstream token lifetime.
	RefreshInterval time.Duration `mapstructure:"refresh_interval_minutes"`
	// ExpiryMargin is how long before the recorded expiry a token is
	// already treated as expired, so refresh happens ahead of time.
	ExpiryMargin time.Duration `mapstructure:"expiry_margin_seconds"`
	// CacheFile persists the cached user and token expiry between runs.
	CacheFile string `mapstructure:"cache_file"`
}

type QuizConfig struct {
	// SubmitDelay is the pause between per-question answer saves so the
	// upstream is not hammered by the submission sequence.
	SubmitDelay time.Duration `mapstructure:"submit_delay_ms"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TRAINING_PORTAL")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	viper.BindEnv("upstream.base_url", "UPSTREAM_BASE_URL")
	viper.BindEnv("upstream.timeout_seconds", "UPSTREAM_TIMEOUT_SECONDS")

	viper.BindEnv("session.cache_file", "SESSION_CACHE_FILE")
	viper.BindEnv("session.refresh_interval_minutes", "SESSION_REFRESH_INTERVAL_MINUTES")

	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("upstream.timeout_seconds", 30)
	viper.SetDefault("session.refresh_interval_minutes", 5)
	viper.SetDefault("session.expiry_margin_seconds", 60)
	viper.SetDefault("session.cache_file", "data/session.json")
	viper.SetDefault("quiz.submit_delay_ms", 100)
	viper.SetDefault("rate_limit.max_requests", 1000)
	viper.SetDefault("rate_limit.window_minutes", 1)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Upstream.Timeout = cfg.Upstream.Timeout * time.Second
	cfg.Session.RefreshInterval = cfg.Session.RefreshInterval * time.Minute
	cfg.Session.ExpiryMargin = cfg.Session.ExpiryMargin * time.Second
	cfg.Quiz.SubmitDelay = cfg.Quiz.SubmitDelay * time.Millisecond

	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("upstream.base_url is required")
	}
	if _, err := url.Parse(cfg.Upstream.BaseURL); err != nil {
		return nil, fmt.Errorf("upstream.base_url is not a valid URL: %w", err)
	}

	return &cfg, nil
}
