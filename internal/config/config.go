package config

import (
	"time"

	"github.com/rickgao/base-swiper/internal/deck"
	"github.com/rickgao/base-swiper/internal/feed"
	"github.com/rickgao/base-swiper/internal/model"
)

// Config is the root configuration for the swiper service.
type Config struct {
	API      APIConfig     `yaml:"api"`
	Feed     FeedConfig    `yaml:"feed"`
	Deck     DeckConfig    `yaml:"deck"`
	Database DBConfig      `yaml:"database"`
	Writer   WriterConfig  `yaml:"writer"`
	Server   ServerConfig  `yaml:"server"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Logging  LoggingConfig `yaml:"logging"`
}

// APIConfig holds explore API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"` // Sent as the api-key header
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// FeedConfig holds Feed Loader settings.
type FeedConfig struct {
	Sequence     []string      `yaml:"sequence"` // Category order; the last is repeatable
	PageSize     int           `yaml:"page_size"`
	Mode         string        `yaml:"mode"` // scrambled or progressive
	InitialSteps int           `yaml:"initial_steps"`
	Parallelism  int           `yaml:"parallelism"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// DeckConfig holds Swipe Deck Controller settings.
type DeckConfig struct {
	RefillThreshold  int `yaml:"refill_threshold"`
	CaughtUpMinItems int `yaml:"caught_up_min_items"` // Defaults to three pages
}

// DBConfig holds the PostgreSQL connection. An empty host disables it.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a database is configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// WriterConfig holds decision journal settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// ServerConfig holds HTTP and websocket settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	PongWait        time.Duration `yaml:"pong_wait"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	MaxMessageSize  int64         `yaml:"max_message_size"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // Empty allows any origin
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Path      string `yaml:"path"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// FeedLoaderConfig converts the feed section into loader configuration.
// The config must have been validated.
func (c *Config) FeedLoaderConfig() feed.Config {
	seq, _ := model.ParseCategories(c.Feed.Sequence)
	return feed.Config{
		Sequence:     seq,
		PageSize:     c.Feed.PageSize,
		Mode:         feed.Mode(c.Feed.Mode),
		InitialSteps: c.Feed.InitialSteps,
		Parallelism:  c.Feed.Parallelism,
		FetchTimeout: c.Feed.FetchTimeout,
	}
}

// DeckControllerConfig converts the deck section into controller configuration.
func (c *Config) DeckControllerConfig() deck.Config {
	return deck.Config{
		RefillThreshold:  c.Deck.RefillThreshold,
		CaughtUpMinItems: c.Deck.CaughtUpMinItems,
	}
}
