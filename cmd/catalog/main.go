// Package main runs the catalog service: the browse endpoint, product administration and storefront state.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/storefront/internal/product/app"
	"github.com/abgdnv/storefront/internal/product/config"
	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/messaging"
	natsclient "github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the collaborators and serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg, tp.Shutdown)
	}

	var metricsHandler http.Handler
	if cfg.Diagnostics.Metrics {
		mp, handler, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return fmt.Errorf("failed to set up metrics: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg, mp.Shutdown)
		metricsHandler = handler
	}

	repo, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.NATS.Enabled {
		nc, err := natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			return err
		}
		defer nc.Close()
		js, err := natsclient.NewJetStreamContext(nc)
		if err != nil {
			return err
		}
		if _, err := natsclient.EnsureStream(ctx, js, cfg.NATS.Stream, messaging.ProductsWildcard); err != nil {
			return err
		}
		publisher = natsclient.NewNatsPublisher(js)
		logger.Info("Publishing product events", "stream", cfg.NATS.Stream)
	}

	deps, err := app.SetupDependencies(repo, publisher, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	serve(gCtx, g, logger, "HTTP", app.SetupHttpServer(deps, cfg), cfg)
	if cfg.Diagnostics.Enabled() {
		serve(gCtx, g, logger, "diagnostics", server.NewDiagnosticsServer(cfg.Diagnostics, metricsHandler), cfg)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// newStore opens the configured product store. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory product store, data is lost on restart")
		return store.NewInMemoryStore(), func() {}, nil
	}

	if cfg.Database.Migrations != "" {
		if err := bootstrap.Migrate(cfg.Database.Migrations, cfg.Database.URL); err != nil {
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("Database migrations applied", "dir", cfg.Database.Migrations)
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// serve runs srv in g and shuts it down gracefully once ctx is cancelled.
func serve(ctx context.Context, g *errgroup.Group, logger *slog.Logger, name string, srv *http.Server, cfg *config.Config) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func shutdownWithTimeout(logger *slog.Logger, name string, cfg *config.Config, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("Failed to shut down "+name, "error", err)
	}
}
