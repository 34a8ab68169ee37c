package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL          = "https://api-sdk.zora.engineering"
	DefaultAPITimeout       = 15 * time.Second
	DefaultMaxRetries       = 2
	DefaultRetryDelay       = 500 * time.Millisecond
	DefaultPageSize         = 20
	DefaultFeedMode         = "progressive"
	DefaultInitialSteps     = 1
	DefaultParallelism      = 4
	DefaultFetchTimeout     = 10 * time.Second
	DefaultRefillThreshold  = 5
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultBatchSize        = 100
	DefaultFlushInterval    = 1 * time.Second
	DefaultBufferSize       = 1000
	DefaultAddr             = ":8080"
	DefaultPingInterval     = 15 * time.Second
	DefaultPongWait         = 30 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultMaxMessageSize   = 4096
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultMetricsNamespace = "base_swiper"
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// DefaultSequence is the category order used when none is configured.
var DefaultSequence = []string{"FEATURED", "TOP_GAINERS", "MOST_VALUABLE", "TOP_VOLUME", "NEW"}

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = DefaultRetryDelay
	}

	// Feed defaults
	if len(c.Feed.Sequence) == 0 {
		c.Feed.Sequence = append([]string(nil), DefaultSequence...)
	}
	if c.Feed.PageSize == 0 {
		c.Feed.PageSize = DefaultPageSize
	}
	if c.Feed.Mode == "" {
		c.Feed.Mode = DefaultFeedMode
	}
	if c.Feed.InitialSteps == 0 {
		c.Feed.InitialSteps = DefaultInitialSteps
	}
	if c.Feed.Parallelism == 0 {
		c.Feed.Parallelism = DefaultParallelism
	}
	if c.Feed.FetchTimeout == 0 {
		c.Feed.FetchTimeout = DefaultFetchTimeout
	}

	// Deck defaults
	if c.Deck.RefillThreshold == 0 {
		c.Deck.RefillThreshold = DefaultRefillThreshold
	}
	if c.Deck.CaughtUpMinItems == 0 {
		c.Deck.CaughtUpMinItems = 3 * c.Feed.PageSize
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.BufferSize == 0 {
		c.Writer.BufferSize = DefaultBufferSize
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPingInterval
	}
	if c.Server.PongWait == 0 {
		c.Server.PongWait = DefaultPongWait
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Metrics defaults
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
