package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roastersquare/ordercore/internal"
	"github.com/roastersquare/ordercore/internal/handler"
	"github.com/roastersquare/ordercore/internal/notification"
	"github.com/roastersquare/ordercore/internal/postgres"
	"github.com/roastersquare/ordercore/internal/service"
	"github.com/roastersquare/ordercore/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info().Msg("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	logger.Info().Msg("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Connect to NATS for notification delivery
	logger.Info().Str("url", cfg.Nats.URL).Msg("Connecting to NATS...")
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("NATS connection failed: %w", err)
	}
	defer nc.Drain()

	// Metrics
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics("ordercore", registry)

	// Stores and services
	orderStore := postgres.NewOrderStore(pool)
	productStore := postgres.NewProductStore(pool)
	customerStore := postgres.NewCustomerStore(pool)

	dispatcher := notification.NewDispatcher(
		notification.NewNATSTransport(nc, cfg.Nats.Subject),
		logger,
	)

	orderService := service.NewOrderService(
		orderStore,
		productStore,
		customerStore,
		dispatcher,
		nil,
		logger,
		service.Config{
			HighValueThreshold: cfg.Orders.HighValueThreshold,
			AsyncSideEffects:   cfg.Orders.AsyncSideEffects,
		},
		service.WithMetrics(metrics),
	)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	handler.NewOrderHandler(orderService, logger).Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Serve until interrupted, then drain in-flight side effects
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-stop:
		logger.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
		orderService.Wait()
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
