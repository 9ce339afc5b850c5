// Package app wires the catalog service: stores, service, REST routes and servers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/product/config"
	"github.com/abgdnv/storefront/internal/product/service"
	"github.com/abgdnv/storefront/internal/product/source"
	"github.com/abgdnv/storefront/internal/product/store"
	"github.com/abgdnv/storefront/internal/product/transport/rest"
	"github.com/abgdnv/storefront/internal/storefront/state"
	"github.com/abgdnv/storefront/pkg/httpclient"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const serviceName = "catalog"

// Dependencies holds what the catalog HTTP handlers need.
type Dependencies struct {
	ProductService service.ProductService
	States         *state.Registry
	Logger         *slog.Logger
}

// SetupDependencies builds the product service over repo. When the remote source is enabled,
// Browse reads from it instead of the store.
func SetupDependencies(repo store.ProductStore, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	opts := service.Options{
		Pipeline: catalog.NewPipeline(cfg.Catalog.Language()),
		PageSize: cfg.Catalog.PageSize,
	}
	if cfg.Source.Enabled {
		client, err := httpclient.New("catalog-source", cfg.Source.Client, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog source client: %w", err)
		}
		opts.Source = source.NewHTTPSource(client, cfg.Source.Path)
	}

	states, err := newStateRegistry(cfg.Catalog.MaxStates, logger)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		ProductService: service.NewService(repo, publisher, opts),
		States:         states,
		Logger:         logger,
	}, nil
}

// newStateRegistry builds the bounded per-user state registry, counts its dispatches and
// reports its size as a gauge.
func newStateRegistry(capacity int, logger *slog.Logger) (*state.Registry, error) {
	meter := otel.Meter("catalog-service")
	changes, err := meter.Int64Counter("storefront_state_changes", metric.WithDescription("Total number of cart and favorites changes"))
	if err != nil {
		return nil, fmt.Errorf("failed to create storefront_state_changes counter: %w", err)
	}

	states := state.NewRegistry(
		state.WithCapacity(capacity),
		state.WithObserver(func(userID string, snap state.Snapshot) {
			changes.Add(context.Background(), 1)
			logger.Debug("Storefront state changed", "user_id", userID, "cart_count", snap.CartCount, "favorites_count", snap.FavoritesCount)
		}),
	)

	_, err = meter.Int64ObservableGauge("storefront_state_users",
		metric.WithDescription("Number of users with a cart and favorites state in memory"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(states.Len()))
			return nil
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to create storefront_state_users gauge: %w", err)
	}
	return states, nil
}

// SetupHttpHandler initializes the router with middleware and all routes.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.ProductService, deps.States, deps.Logger).RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the public HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(serviceName, cfg.HTTPServer, SetupHttpHandler(deps))
}
