package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/base-swiper/internal/database"
	"github.com/rickgao/base-swiper/internal/prefs"
	"github.com/rickgao/base-swiper/internal/server"
	"github.com/rickgao/base-swiper/internal/session"
	"github.com/rickgao/base-swiper/internal/version"
	"github.com/rickgao/base-swiper/internal/writer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve swipe sessions over websockets",
	Long: `Starts the HTTP server. Each websocket connection on /ws gets its own
session and deck. When a database is configured, amount preferences are
stored in postgres and every decision is journaled.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp(os.Stdout)
	if err != nil {
		return err
	}
	logger := a.logger

	logger.Info("starting swiper",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	deps := a.sessionDeps()

	var journal *writer.DecisionWriter
	if a.cfg.Database.Enabled() {
		logger.Info("connecting to database",
			"host", a.cfg.Database.Host,
			"port", a.cfg.Database.Port,
			"database", a.cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("database connected")

		deps.Prefs = prefs.NewPostgres(pool)

		journal = writer.NewDecisionWriter(writerConfig(a.cfg), pool, logger, writer.WithMetrics(a.metrics))
		if err := journal.Start(ctx); err != nil {
			return fmt.Errorf("start decision journal: %w", err)
		}
		deps.Journal = journal
	} else {
		logger.Warn("no database configured; preferences are kept in memory and decisions are not journaled")
	}

	manager := session.NewManager(deps)
	srv := server.New(serverConfig(a.cfg), manager, a.metrics, logger)
	if err := srv.Start(); err != nil {
		return err
	}

	logger.Info("swiper running",
		"addr", srv.Addr(),
		"websocket", "ws://"+srv.Addr()+"/ws",
	)

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
	manager.CloseAll()

	if journal != nil {
		if err := journal.Stop(shutdownCtx); err != nil {
			logger.Warn("decision journal shutdown", "error", err)
		}
		stats := journal.Stats()
		logger.Info("decision journal stopped",
			"inserts", stats.Inserts,
			"conflicts", stats.Conflicts,
			"errors", stats.Errors,
			"dropped", stats.Dropped,
		)
	}

	logger.Info("swiper stopped")
	return nil
}
