package ports

import (
	"context"
	"io"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	ListOrders(ctx context.Context, filter types.ListFilter) ([]*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, input types.NewOrderInput) (*domain.Order, error)
	PatchOrder(ctx context.Context, id int64, input types.EditOrderInput) (*domain.Order, error)
	ApproveOrder(ctx context.Context, id int64) (*domain.Order, error)
	DeliverOrder(ctx context.Context, id int64) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	ExportOrders(ctx context.Context, w io.Writer) error
	ParseImport(ctx context.Context, r io.Reader) ([]*domain.Order, error)
	CommitImport(ctx context.Context, orders []*domain.Order) (*types.ImportResult, error)
	ImportOrders(ctx context.Context, r io.Reader) (*types.ImportResult, error)
}
