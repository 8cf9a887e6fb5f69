package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// CommitImportActivityName upserts a decoded CSV batch into the order store.
const CommitImportActivityName = "orders.activities.CommitImport"

// ImportBatch is the activity payload: orders already decoded and validated by the API.
type ImportBatch struct {
	Orders []*domain.Order
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// CommitImport stores the batch atomically. Invalid input is not retried.
func (a *Activities) CommitImport(ctx context.Context, batch ImportBatch) (*types.ImportResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order import activity not initialized")
		return nil, errors.New("order import activity not initialized")
	}
	logger.Info("CommitImport activity started", "orders", len(batch.Orders))
	result, err := a.service.CommitImport(ctx, batch.Orders)
	if err != nil {
		logger.Error("CommitImport activity failed", "orders", len(batch.Orders), "error", err)
		if errors.Is(err, application.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidInput", err)
		}
		return nil, err
	}
	logger.Info("CommitImport activity completed", "batchId", result.BatchID, "imported", result.Imported)
	return result, nil
}
