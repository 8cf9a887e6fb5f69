package memory

import (
	"context"
	"cmp"
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store. A single mutex guards the map and the id high-water mark.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	// lastID never decreases, so ids freed by Delete are not handed out again.
	lastID int64
}

func NewRepository(seed ...*domain.Order) *Repository {
	r := &Repository{orders: map[int64]*domain.Order{}}
	for _, order := range seed {
		if order == nil {
			continue
		}
		r.put(order.Clone())
	}
	return r
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, order.Clone())
	}
	slices.SortFunc(list, func(a, b *domain.Order) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	clone, err := prepare(order)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(clone)
	return clone.Clone(), nil
}

func (r *Repository) SaveAll(_ context.Context, orders []*domain.Order) ([]*domain.Order, error) {
	clones := make([]*domain.Order, 0, len(orders))
	for _, order := range orders {
		clone, err := prepare(order)
		if err != nil {
			return nil, err
		}
		clones = append(clones, clone)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make([]*domain.Order, 0, len(clones))
	for _, clone := range clones {
		r.put(clone)
		saved = append(saved, clone.Clone())
	}
	return saved, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *Repository) NextID(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID()
}

func (r *Repository) Create(_ context.Context, build func(id int64) (*domain.Order, error)) (*domain.Order, error) {
	if build == nil {
		return nil, errors.New("order builder is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.nextID()
	if err != nil {
		return nil, err
	}
	order, err := build(id)
	if err != nil {
		return nil, err
	}
	clone, err := prepare(order)
	if err != nil {
		return nil, err
	}
	r.put(clone)
	return clone.Clone(), nil
}

func (r *Repository) Update(_ context.Context, id int64, mutate func(order *domain.Order) error) (*domain.Order, error) {
	if mutate == nil {
		return nil, errors.New("order mutation is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := stored.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.ID = id
	if err := working.Validate(); err != nil {
		return nil, err
	}
	r.orders[id] = working
	return working.Clone(), nil
}

// nextID must be called with mu held.
func (r *Repository) nextID() (int64, error) {
	if r.lastID == math.MaxInt64 {
		return 0, ports.ErrIDsExhausted
	}
	return r.lastID + 1, nil
}

// put must be called with mu held for writing.
func (r *Repository) put(order *domain.Order) {
	r.orders[order.ID] = order
	if order.ID > r.lastID {
		r.lastID = order.ID
	}
}

func prepare(order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.UpdateStatus(clone.Status); err != nil {
		return nil, err
	}
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	return clone, nil
}
