package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	ordersserver "github.com/Apurer/go-gin-orders-api/go"

	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/auth"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	platformtemporal "github.com/Apurer/go-gin-orders-api/internal/platform/temporal"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API with observability, storage, auth, and import workflows wired.
// It returns when ctx is cancelled or the process receives SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderRepo, sharedStore, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()
	coreOrderService := ordersapp.NewService(orderRepo)
	if cfg.SeedOrders {
		if err := coreOrderService.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed orders: %w", err)
		}
	}
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	importWorkflows, closeWorkflows := buildImportWorkflows(cfg, sharedStore, orderService, func() (client.Client, error) {
		return platformtemporal.Dial(cfg.TemporalAddress, cfg.TemporalNamespace, instruments.Tracer("temporal-client"), logger)
	}, logger)
	defer closeWorkflows()

	authenticator, err := auth.NewBasicAuthenticator(cfg.AdminLogin, cfg.AdminPassword, logger)
	if err != nil {
		return fmt.Errorf("failed to configure admin credentials: %w", err)
	}

	router := gin.New()
	router.Use(otelgin.Middleware(serviceName), gin.Logger(), apierrors.DefaultResponder.Recovery(logger))
	ordersserver.NewRouterWithGinEngine(router, ordersserver.ApiHandleFunctions{
		OrderAPI: ordersserver.NewOrderAPI(orderService, importWorkflows),
		Auth:     authenticator.Middleware(),
	})

	return serve(ctx, cfg.Addr(), router, logger)
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("orders API shutting down", slog.String("addr", addr))
	return server.Shutdown(shutdownCtx)
}

// buildOrderRepository reports true only for the postgres store, the one cmd/worker can also reach.
func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, bool, func()) {
	db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return ordersmemory.NewRepository(), false, cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate postgres schema, falling back to in-memory order store", slog.String("error", err.Error()))
		cleanup()
		return ordersmemory.NewRepository(), false, func() {}
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db), true, cleanup
}

// buildImportWorkflows hands imports to Temporal only when the worker commits into the same store
// the API reads from. Otherwise imports are committed inline and dial is never called.
func buildImportWorkflows(cfg Config, sharedStore bool, service ordersports.Service, dial func() (client.Client, error), logger *slog.Logger) (ordersports.ImportOrchestrator, func()) {
	inline := ordersworkflows.NewInlineImportWorkflows(service)
	if cfg.TemporalDisabled {
		logger.Warn("Temporal disabled via TEMPORAL_DISABLED, committing imports inline")
		return inline, func() {}
	}
	if !sharedStore {
		logger.Warn("order store is in-memory and not visible to the Temporal worker, committing imports inline")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, committing imports inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return ordersworkflows.NewTemporalImportWorkflows(temporalClient), temporalClient.Close
}
