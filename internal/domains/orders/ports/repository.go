package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrIDsExhausted is returned by NextID and Create once the high-water mark sits at math.MaxInt64.
	ErrIDsExhausted = errors.New("order id space exhausted")
)

// Repository is the order store. Implementations must be safe for concurrent use.
type Repository interface {
	List(ctx context.Context) ([]*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// Save inserts or fully overwrites the order with the same id.
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// SaveAll upserts a batch atomically: either every order is stored or none is.
	SaveAll(ctx context.Context, orders []*domain.Order) ([]*domain.Order, error)
	// Delete is a no-op when the id is absent.
	Delete(ctx context.Context, id int64) error
	NextID(ctx context.Context) (int64, error)
	// Create assigns the next id and inserts the built order without releasing the store in between.
	Create(ctx context.Context, build func(id int64) (*domain.Order, error)) (*domain.Order, error)
	// Update runs mutate against the stored order and writes it back under the same lock.
	Update(ctx context.Context, id int64, mutate func(order *domain.Order) error) (*domain.Order, error)
}
