// Package main runs the notifier: it turns product events into the admin notification list.
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

	"github.com/abgdnv/storefront/internal/notification"
	"github.com/abgdnv/storefront/internal/notification/config"
	"github.com/abgdnv/storefront/internal/notification/kv"
	"github.com/abgdnv/storefront/internal/notification/subscriber"
	"github.com/abgdnv/storefront/internal/notification/transport/rest"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/probes"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "notifier"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, starts the NATS subscriber and the optional HTTP listeners.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	natsConn, err := nats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create NATS connection: %w", err)
	}
	defer natsConn.Close()
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		return fmt.Errorf("failed to get JetStream context: %w", err)
	}
	if _, err := nats.EnsureStream(ctx, js, cfg.Subscriber.Stream, messaging.ProductsWildcard); err != nil {
		return err
	}
	bucket, err := nats.EnsureKeyValue(ctx, js, cfg.KV.Bucket)
	if err != nil {
		return err
	}
	inbox := notification.NewInbox(kv.NewJetStream(bucket), cfg.KV.Key, cfg.KV.MaxItems)

	var metricsHandler http.Handler
	if cfg.Diagnostics.Metrics {
		mp, handler, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return fmt.Errorf("failed to set up metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shut down meter provider", "error", err)
			}
		}()
		metricsHandler = handler
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("NATS subscriber started", "stream", cfg.Subscriber.Stream, "consumer", cfg.Subscriber.Consumer)
		err := subscriber.Start(gCtx, js, cfg.Subscriber, inbox, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("subscriber failed", "error", err)
			return err
		}
		logger.Info("subscriber stopped gracefully.")
		return nil
	})

	if err := probes.MarkReady(cfg.Probes); err != nil {
		return err
	}
	defer func() {
		if err := probes.MarkNotReady(cfg.Probes); err != nil {
			logger.Error("Failed to clear readiness", "error", err)
		}
	}()
	g.Go(func() error {
		return probes.RunLiveness(gCtx, cfg.Probes, logger)
	})

	if cfg.API.Enabled {
		mux := server.NewChiRouter(logger)
		rest.NewHandler(inbox, logger).RegisterRoutes(mux)
		serve(gCtx, g, logger, "admin API", server.NewHTTPServer(serviceName, cfg.API.Server, mux), cfg)
	}
	if cfg.Diagnostics.Enabled() {
		serve(gCtx, g, logger, "diagnostics", server.NewDiagnosticsServer(cfg.Diagnostics, metricsHandler), cfg)
	}

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("errgroup encountered an error: %w", err)
		}
	}

	return nil
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
		logger.Info("Shutting down " + name + " server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
