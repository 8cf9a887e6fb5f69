package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

func newOrderBuilder(productID int64) func(id int64) (*domain.Order, error) {
	return func(id int64) (*domain.Order, error) {
		return domain.NewOrder(id, productID, 1)
	}
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	order, err := domain.NewOrder(4, 10, 2)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, int64(4), saved.ID)

	fetched, err := repo.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(10), fetched.ProductID)

	_, err = repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_SaveOverwrites(t *testing.T) {
	repo := NewRepository(domain.SeedOrders()...)
	ctx := context.Background()

	replacement := &domain.Order{ID: 2, ProductID: 77, Quantity: 5, Status: domain.StatusDelivered, Complete: true}
	_, err := repo.Save(ctx, replacement)
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, replacement, fetched)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := NewRepository(domain.SeedOrders()...)
	ctx := context.Background()

	fetched, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	fetched.Approve()

	again, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, again.Status)
}

func TestRepository_DeleteIsIdempotent(t *testing.T) {
	repo := NewRepository(domain.SeedOrders()...)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 2))
	require.NoError(t, repo.Delete(ctx, 2))
	require.NoError(t, repo.Delete(ctx, 404))

	_, err := repo.GetByID(ctx, 2)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CreateAssignsSequentialIDs(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		created, err := repo.Create(ctx, newOrderBuilder(want*10))
		require.NoError(t, err)
		assert.Equal(t, want, created.ID)
	}
}

// With size+1 assignment, deleting 2 from {1,2,3} would hand out 3 again and overwrite a live order.
func TestRepository_NextIDDoesNotReuseAfterDelete(t *testing.T) {
	repo := NewRepository(domain.SeedOrders()...)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 2))

	next, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), next)

	created, err := repo.Create(ctx, newOrderBuilder(42))
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	three, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), three.ProductID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRepository_NextIDTracksImportedIDs(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.SaveAll(ctx, []*domain.Order{
		{ID: 10, Status: domain.StatusPlaced},
		{ID: 4, Status: domain.StatusPlaced},
	})
	require.NoError(t, err)

	next, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), next)
}

func TestRepository_SaveAllIsAllOrNothing(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.SaveAll(ctx, []*domain.Order{
		{ID: 1, Status: domain.StatusPlaced},
		{ID: 2, Status: "lost"},
	})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo := NewRepository()
	_, err := repo.Update(context.Background(), 1, func(order *domain.Order) error {
		order.Approve()
		return nil
	})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateDiscardsFailedMutation(t *testing.T) {
	repo := NewRepository(domain.SeedOrders()...)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := repo.Update(ctx, 1, func(order *domain.Order) error {
		order.Deliver()
		return boom
	})
	require.ErrorIs(t, err, boom)

	fetched, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, fetched.Status)
}

func TestRepository_ConcurrentCreatesKeepEveryOrder(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := repo.Create(ctx, newOrderBuilder(int64(w))); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, workers*perWorker)
	seen := make(map[int64]bool, len(list))
	for _, order := range list {
		assert.False(t, seen[order.ID], "duplicate id %d", order.ID)
		seen[order.ID] = true
	}
}

func TestRepository_ConcurrentStatusChangesAreSerialized(t *testing.T) {
	repo := NewRepository(&domain.Order{ID: 1, Status: domain.StatusPlaced})
	ctx := context.Background()
	const workers = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Update(ctx, 1, func(order *domain.Order) error {
				order.Quantity++
				return nil
			})
		}()
	}
	wg.Wait()

	fetched, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), fetched.Quantity)
}

func TestRepository_CreateStopsAtMaxID(t *testing.T) {
	top := &domain.Order{ID: math.MaxInt64, ProductID: 1, Quantity: 1, Status: domain.StatusPlaced}
	repo := NewRepository(top)
	ctx := context.Background()

	_, err := repo.NextID(ctx)
	require.ErrorIs(t, err, ports.ErrIDsExhausted)

	for i := 0; i < 2; i++ {
		_, err = repo.Create(ctx, newOrderBuilder(222))
		require.ErrorIs(t, err, ports.ErrIDsExhausted)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, top, list[0])
}
