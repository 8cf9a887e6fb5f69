package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// ImportOrchestrator commits decoded CSV batches, either inline or through a durable workflow.
type ImportOrchestrator interface {
	CommitImport(ctx context.Context, orders []*domain.Order) (*types.ImportResult, error)
}
