package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/portfolio-intel/internal/api"
	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/config"
	"github.com/terra-clan/portfolio-intel/internal/dashboard"
	"github.com/terra-clan/portfolio-intel/internal/events"
	"github.com/terra-clan/portfolio-intel/internal/refresh"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting portfolio-intel",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Load catalog and market definitions
	cat, err := catalog.LoadFromFile(cfg.Catalog.CatalogFile)
	if err != nil {
		slog.Error("failed to load catalog", "file", cfg.Catalog.CatalogFile, "error", err)
		os.Exit(1)
	}

	markets, err := catalog.LoadMarketsFromFile(cfg.Catalog.MarketsFile, cat)
	if err != nil {
		slog.Error("failed to load markets", "file", cfg.Catalog.MarketsFile, "error", err)
		os.Exit(1)
	}

	slog.Info("catalog loaded",
		"pillars", len(cat.Pillars()),
		"products", cat.Len(),
		"markets", len(markets),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := newBus(ctx, cfg.Redis)
	if err != nil {
		slog.Error("failed to create event bus", "error", err)
		os.Exit(1)
	}

	service := dashboard.NewService(cat, markets, dashboard.Options{
		Seed:      cfg.Dataset.Seed,
		LoadDelay: cfg.Dataset.LoadDelay,
	}, bus)

	// Initial load runs in the background; /ready reports 503 until it lands
	go func() {
		if _, err := service.Reload(ctx); err != nil {
			slog.Error("initial dataset load failed", "error", err)
		}
	}()

	// Start refresh worker
	refresher := refresh.NewRefresher(service, cfg.Dataset.RefreshInterval)
	refresher.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, service, bus)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// Requests, and stream subscriptions with them, end on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers and stream subscriptions
	cancel()
	<-refresher.Done()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := bus.Close(); err != nil {
		slog.Error("event bus close error", "error", err)
	}

	slog.Info("portfolio-intel stopped")
}

// newBus picks the Redis bus when an address is configured so reloads fan
// out across replicas, and the in-process bus otherwise
func newBus(ctx context.Context, cfg config.RedisConfig) (events.Bus, error) {
	if !cfg.Enabled() {
		slog.Info("using in-process event bus")
		return events.NewMemoryBus(), nil
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	bus, err := events.NewRedisBus(connectCtx, events.RedisConfig{
		Address:  cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		Channel:  cfg.Channel,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("using redis event bus", "address", cfg.Address, "channel", cfg.Channel)
	return bus, nil
}
