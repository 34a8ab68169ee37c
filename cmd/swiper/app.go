package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rickgao/base-swiper/internal/api"
	"github.com/rickgao/base-swiper/internal/config"
	"github.com/rickgao/base-swiper/internal/metrics"
	"github.com/rickgao/base-swiper/internal/server"
	"github.com/rickgao/base-swiper/internal/session"
	"github.com/rickgao/base-swiper/internal/writer"
)

// app holds what every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *api.Client
}

// loadApp reads configuration and builds the shared components. Logs go to out.
func loadApp(out io.Writer) (*app, error) {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, err := newLogger(cfg.Logging, out)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithAPIKey(cfg.API.APIKey),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryDelay),
		api.WithLogger(logger.With("component", "api")),
	)

	return &app{cfg: cfg, logger: logger, metrics: m, client: client}, nil
}

func newLogger(lc config.LoggingConfig, out io.Writer) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch lc.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("logging.format: unknown format %q", lc.Format)
	}
}

// sessionDeps wires the shared collaborators into session dependencies.
// Prefs and Journal are filled in by serve when a database is configured.
func (a *app) sessionDeps() session.Deps {
	return session.Deps{
		Fetcher:    a.client,
		FeedConfig: a.cfg.FeedLoaderConfig(),
		DeckConfig: a.cfg.DeckControllerConfig(),
		Metrics:    a.metrics,
		Logger:     a.logger,
	}
}

func serverConfig(cfg *config.Config) server.Config {
	sc := server.Config{
		Addr:            cfg.Server.Addr,
		PingInterval:    cfg.Server.PingInterval,
		PongWait:        cfg.Server.PongWait,
		WriteTimeout:    cfg.Server.WriteTimeout,
		MaxMessageSize:  cfg.Server.MaxMessageSize,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if cfg.Metrics.Enabled {
		sc.MetricsPath = cfg.Metrics.Path
	}
	return sc
}

func writerConfig(cfg *config.Config) writer.WriterConfig {
	return writer.WriterConfig{
		BatchSize:     cfg.Writer.BatchSize,
		FlushInterval: cfg.Writer.FlushInterval,
		BufferSize:    cfg.Writer.BufferSize,
	}
}
