package application

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/tabular"
)

// Service orchestrates order use cases.
type Service struct {
	repo    ports.Repository
	batchID func() string
}

type Option func(*Service)

// WithBatchIDs overrides how import batch identifiers are generated.
func WithBatchIDs(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.batchID = next
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, batchID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Seed stores the initial orders when the store is empty.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return mapError(err)
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = s.repo.SaveAll(ctx, domain.SeedOrders())
	return mapError(err)
}

// ListOrders returns every order. The filter is not applied.
func (s *Service) ListOrders(ctx context.Context, _ types.ListFilter) ([]*domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) CreateOrder(ctx context.Context, input types.NewOrderInput) (*domain.Order, error) {
	order, err := s.repo.Create(ctx, func(id int64) (*domain.Order, error) {
		return domain.NewOrder(id, input.ProductID, input.Quantity)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) PatchOrder(ctx context.Context, id int64, input types.EditOrderInput) (*domain.Order, error) {
	order, err := s.repo.Update(ctx, id, func(order *domain.Order) error {
		return order.ApplyEdit(domain.Status(input.Status), input.Complete, input.Quantity)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) ApproveOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.changeStatus(ctx, id, (*domain.Order).Approve)
}

func (s *Service) DeliverOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.changeStatus(ctx, id, (*domain.Order).Deliver)
}

func (s *Service) changeStatus(ctx context.Context, id int64, transition func(*domain.Order)) (*domain.Order, error) {
	order, err := s.repo.Update(ctx, id, func(order *domain.Order) error {
		transition(order)
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return mapError(s.repo.Delete(ctx, id))
}

// ExportOrders writes the current store snapshot as CSV.
func (s *Service) ExportOrders(ctx context.Context, w io.Writer) error {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return mapError(err)
	}
	if err := tabular.Encode(w, orders); err != nil {
		return mapError(err)
	}
	return nil
}

// ParseImport decodes CSV rows without touching the store.
func (s *Service) ParseImport(_ context.Context, r io.Reader) ([]*domain.Order, error) {
	if r == nil {
		return nil, mapError(errors.New("import reader is nil"))
	}
	orders, err := tabular.Decode(r)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

// CommitImport upserts a decoded batch in one step.
func (s *Service) CommitImport(ctx context.Context, orders []*domain.Order) (*types.ImportResult, error) {
	result := &types.ImportResult{BatchID: s.batchID(), OrderIDs: []int64{}}
	if len(orders) == 0 {
		return result, nil
	}
	saved, err := s.repo.SaveAll(ctx, orders)
	if err != nil {
		return nil, mapError(err)
	}
	for _, order := range saved {
		result.OrderIDs = append(result.OrderIDs, order.ID)
	}
	result.Imported = len(saved)
	return result, nil
}

// ImportOrders decodes and commits in one call.
func (s *Service) ImportOrders(ctx context.Context, r io.Reader) (*types.ImportResult, error) {
	orders, err := s.ParseImport(ctx, r)
	if err != nil {
		return nil, err
	}
	return s.CommitImport(ctx, orders)
}

var _ ports.Service = (*Service)(nil)
