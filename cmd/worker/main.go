package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	platformtemporal "github.com/Apurer/go-gin-orders-api/internal/platform/temporal"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	const serviceName = "orders-worker"
	telemetry, err := platformobservability.SettingsFromEnv(serviceName)
	if err != nil {
		log.Fatalf("invalid telemetry settings: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, telemetry)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderRepo, cleanupRepo, err := buildOrderRepository(ctx, logger)
	if err != nil {
		logger.Error("worker needs the API's postgres order store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupRepo()
	orderService := ordersobs.New(
		ordersapp.NewService(orderRepo),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	orderActivities := orderactivities.NewActivities(orderService)

	namespace := envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)
	temporalClient, err := platformtemporal.Dial(
		envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		namespace,
		instruments.Tracer("temporal-worker"),
		logger,
	)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderImportTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderImportWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderImportWorkflowName})
	w.RegisterActivityWithOptions(orderActivities.CommitImport, activity.RegisterOptions{Name: orderactivities.CommitImportActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderImportTaskQueue), slog.String("namespace", namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// buildOrderRepository connects to the postgres store the API writes to. There is no in-memory
// fallback: imports committed here must be visible to the API process.
func buildOrderRepository(ctx context.Context, logger *slog.Logger) (ordersports.Repository, func(), error) {
	db, err := platformpostgres.Connect(ctx, strings.TrimSpace(os.Getenv("POSTGRES_DSN")))
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("unwrap postgres connection: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate postgres schema: %w", err)
	}
	logger.Info("worker order repository configured with postgres")
	return orderspostgres.NewRepository(db), func() { _ = sqlDB.Close() }, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
