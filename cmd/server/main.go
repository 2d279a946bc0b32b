package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/api"
	"github.com/ndewijer/stock-portfolio-tracker/internal/auth"
	"github.com/ndewijer/stock-portfolio-tracker/internal/config"
	"github.com/ndewijer/stock-portfolio-tracker/internal/database"
	"github.com/ndewijer/stock-portfolio-tracker/internal/logging"
	"github.com/ndewijer/stock-portfolio-tracker/internal/mail"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
	"github.com/ndewijer/stock-portfolio-tracker/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	os.Exit(serve(logger, func() error { return run(cfg, logger) }))
}

// serve calls runServer and returns the process exit code. The logger is
// flushed before serve returns, since os.Exit skips deferred calls.
func serve(logger *zap.Logger, runServer func() error) int {
	defer logger.Sync() //nolint:errcheck // nothing useful to do on exit

	if err := runServer(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		return err
	}
	logger.Info("connected to database", zap.String("path", cfg.Database.Path))

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)

	clock := staleness.SystemClock{}
	quotes := alphavantage.NewAPIClient(cfg.AlphaVantage, logger)
	dispatcher := mail.NewDispatcher(mail.New(cfg.Mail, logger), logger)
	defer dispatcher.Wait()

	// Create services
	refreshService := service.NewRefreshService(quotes, staleness.Daily{}, clock, logger)
	services := api.Services{
		System: service.NewSystemService(db),
		Accounts: service.NewAccountService(
			accountRepo,
			auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL),
			auth.NewLinkSigner(cfg.Auth.SecretKey, cfg.Auth.ConfirmTTL),
			dispatcher,
			cfg.Mail.BaseURL,
			clock,
			logger,
		),
		Admin:     service.NewAdminService(accountRepo, clock, logger),
		Positions: service.NewPositionService(positionRepo, refreshService, logger),
		Watchlist: service.NewWatchlistService(watchlistRepo, refreshService, logger),
	}

	if cfg.Refresh.Schedule != "" {
		job := service.NewRefreshJob(positionRepo, watchlistRepo, refreshService, cfg.Refresh.Concurrency, logger)
		scheduler, err := job.Scheduler(cfg.Refresh.Schedule)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info("scheduled refresh enabled", zap.String("schedule", cfg.Refresh.Schedule))
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(services, cfg, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("version", version.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
