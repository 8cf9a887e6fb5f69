package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/tabular"
)

type fakeOrderRepo struct {
	orders map[int64]*domain.Order
	err    error
}

func newFakeOrderRepo(seed ...*domain.Order) *fakeOrderRepo {
	f := &fakeOrderRepo{orders: map[int64]*domain.Order{}}
	for _, o := range seed {
		f.orders[o.ID] = o.Clone()
	}
	return f
}

func (f *fakeOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	var list []*domain.Order
	for _, o := range f.orders {
		list = append(list, o.Clone())
	}
	return list, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o.Clone(), nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.orders[order.ID] = order.Clone()
	return order.Clone(), nil
}

func (f *fakeOrderRepo) SaveAll(ctx context.Context, orders []*domain.Order) ([]*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	var saved []*domain.Order
	for _, o := range orders {
		s, _ := f.Save(ctx, o)
		saved = append(saved, s)
	}
	return saved, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id int64) error {
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) NextID(_ context.Context) (int64, error) {
	var highest int64
	for id := range f.orders {
		if id > highest {
			highest = id
		}
	}
	return highest + 1, nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, build func(id int64) (*domain.Order, error)) (*domain.Order, error) {
	id, _ := f.NextID(ctx)
	order, err := build(id)
	if err != nil {
		return nil, err
	}
	return f.Save(ctx, order)
}

func (f *fakeOrderRepo) Update(ctx context.Context, id int64, mutate func(order *domain.Order) error) (*domain.Order, error) {
	order, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(order); err != nil {
		return nil, err
	}
	return f.Save(ctx, order)
}

func fixedBatchID() Option {
	return WithBatchIDs(func() string { return "batch-1" })
}

func TestCreateOrder_AssignsSequentialIDsOnEmptyStore(t *testing.T) {
	svc := NewService(newFakeOrderRepo())
	ctx := context.Background()

	for want := int64(1); want <= 4; want++ {
		order, err := svc.CreateOrder(ctx, types.NewOrderInput{ProductID: 5, Quantity: 10})
		require.NoError(t, err)
		assert.Equal(t, want, order.ID)
		assert.Equal(t, domain.StatusPlaced, order.Status)
		assert.False(t, order.Complete)
	}
}

func TestCreateOrder_NegativeQuantity(t *testing.T) {
	svc := NewService(newFakeOrderRepo())
	_, err := svc.CreateOrder(context.Background(), types.NewOrderInput{ProductID: 5, Quantity: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestListOrders_IgnoresFilter(t *testing.T) {
	repo := newFakeOrderRepo(domain.SeedOrders()...)
	repo.orders[2].Approve()
	svc := NewService(repo)

	status := domain.StatusDelivered
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	filtered, err := svc.ListOrders(context.Background(), types.ListFilter{Status: &status, From: &from})
	require.NoError(t, err)
	assert.Len(t, filtered, 3)
}

func TestPatchOrder_OverwritesOnlyEditableFields(t *testing.T) {
	date := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo(&domain.Order{ID: 1, ProductID: 15, Quantity: 1, Date: &date, Status: domain.StatusPlaced})
	svc := NewService(repo)

	patched, err := svc.PatchOrder(context.Background(), 1, types.EditOrderInput{Status: "approved", Complete: true, Quantity: 75})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, patched.Status)
	assert.True(t, patched.Complete)
	assert.Equal(t, int64(75), patched.Quantity)
	assert.Equal(t, int64(15), patched.ProductID)
	require.NotNil(t, patched.Date)
	assert.Equal(t, date, *patched.Date)

	stored := repo.orders[1]
	assert.Equal(t, patched, stored)
}

func TestPatchOrder_NotFound(t *testing.T) {
	svc := NewService(newFakeOrderRepo())
	_, err := svc.PatchOrder(context.Background(), 9, types.EditOrderInput{Quantity: 1})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPatchOrder_UnknownStatus(t *testing.T) {
	svc := NewService(newFakeOrderRepo(domain.SeedOrders()...))
	_, err := svc.PatchOrder(context.Background(), 1, types.EditOrderInput{Status: "shipped"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestApproveAndDeliver(t *testing.T) {
	date := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	original := &domain.Order{ID: 3, ProductID: 8, Quantity: 4, Date: &date, Status: domain.StatusPlaced, Complete: true}
	svc := NewService(newFakeOrderRepo(original))
	ctx := context.Background()

	approved, err := svc.ApproveOrder(ctx, 3)
	require.NoError(t, err)
	want := original.Clone()
	want.Status = domain.StatusApproved
	assert.Equal(t, want, approved)

	delivered, err := svc.DeliverOrder(ctx, 3)
	require.NoError(t, err)
	want.Status = domain.StatusDelivered
	assert.Equal(t, want, delivered)
}

func TestApproveAndDeliver_NotFound(t *testing.T) {
	svc := NewService(newFakeOrderRepo())
	ctx := context.Background()

	_, err := svc.ApproveOrder(ctx, 42)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = svc.DeliverOrder(ctx, 42)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteOrder_Idempotent(t *testing.T) {
	repo := newFakeOrderRepo(domain.SeedOrders()...)
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.DeleteOrder(ctx, 1))
	require.NoError(t, svc.DeleteOrder(ctx, 1))
	assert.Len(t, repo.orders, 2)
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	assert.Len(t, repo.orders, 3)

	repo.orders[1].Quantity = 50
	require.NoError(t, svc.Seed(ctx))
	assert.Equal(t, int64(50), repo.orders[1].Quantity)
}

func TestExportThenImport_RoundTrip(t *testing.T) {
	date := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	source := NewService(memory.NewRepository(
		&domain.Order{ID: 1, ProductID: 11, Quantity: 1, Date: &date, Status: domain.StatusPlaced},
		&domain.Order{ID: 2, ProductID: 12, Quantity: 2, Status: domain.StatusApproved, Complete: true},
		&domain.Order{ID: 3, ProductID: 13, Quantity: 3, Date: &date, Status: domain.StatusDelivered},
	))
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, source.ExportOrders(ctx, &buf))

	targetRepo := memory.NewRepository()
	target := NewService(targetRepo, fixedBatchID())
	result, err := target.ImportOrders(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "batch-1", result.BatchID)
	assert.Equal(t, 3, result.Imported)
	assert.ElementsMatch(t, []int64{1, 2, 3}, result.OrderIDs)

	want, err := source.ListOrders(ctx, types.ListFilter{})
	require.NoError(t, err)
	for _, order := range want {
		got, err := target.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ProductID, got.ProductID)
		assert.Equal(t, order.Quantity, got.Quantity)
		assert.Equal(t, order.Status, got.Status)
		assert.Equal(t, order.Complete, got.Complete)
	}
}

func TestImportOrders_CommitsAndAdvancesIDs(t *testing.T) {
	repo := memory.NewRepository(domain.SeedOrders()...)
	svc := NewService(repo)
	ctx := context.Background()

	input := "id,productId,quantity,date,status,complete\r\n10,4,2,null,DELIVERED,true\r\n2,9,9,null,APPROVED,false\r\n"
	result, err := svc.ImportOrders(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	overwritten, err := svc.GetOrder(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), overwritten.ProductID)
	assert.Equal(t, domain.StatusApproved, overwritten.Status)

	created, err := svc.CreateOrder(ctx, types.NewOrderInput{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
}

func TestImportOrders_MaxIDBlocksFurtherCreates(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.ImportOrders(ctx, strings.NewReader("9223372036854775807,1,1,null,PLACED,false\n"))
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, types.NewOrderInput{ProductID: 111, Quantity: 1})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ports.ErrIDsExhausted)

	list, err := svc.ListOrders(ctx, types.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ProductID)
}

func TestImportOrders_NonPositiveIDRejected(t *testing.T) {
	svc := NewService(memory.NewRepository())
	ctx := context.Background()

	for _, input := range []string{"0,1,1,null,PLACED,false\n", "-4,1,1,null,PLACED,false\n"} {
		_, err := svc.ImportOrders(ctx, strings.NewReader(input))
		require.ErrorIs(t, err, ErrInvalidInput, input)
		require.ErrorIs(t, err, tabular.ErrInvalidValue, input)
	}

	list, err := svc.ListOrders(ctx, types.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportOrders_BadRowCommitsNothing(t *testing.T) {
	repo := memory.NewRepository()
	svc := NewService(repo)
	ctx := context.Background()

	input := "1,1,1,null,PLACED,false\n2,1,1,null,placed,false\n"
	_, err := svc.ImportOrders(ctx, strings.NewReader(input))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, tabular.ErrUnknownStatus)

	list, err := svc.ListOrders(ctx, types.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportOrders_EmptyBatch(t *testing.T) {
	svc := NewService(memory.NewRepository(), fixedBatchID())
	result, err := svc.ImportOrders(context.Background(), strings.NewReader("1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Empty(t, result.OrderIDs)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportOrders_WriterFailureIsInternal(t *testing.T) {
	svc := NewService(memory.NewRepository(domain.SeedOrders()...))
	err := svc.ExportOrders(context.Background(), failingWriter{})
	require.ErrorIs(t, err, ErrInternal)
}

func TestRepositoryFailureIsInternal(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.err = errors.New("connection reset")
	svc := NewService(repo)

	_, err := svc.ListOrders(context.Background(), types.ListFilter{})
	require.ErrorIs(t, err, ErrInternal)
}

func TestConcurrentCreates_NoLostOrders(t *testing.T) {
	svc := NewService(memory.NewRepository())
	ctx := context.Background()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CreateOrder(ctx, types.NewOrderInput{ProductID: int64(i), Quantity: 1})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := svc.ListOrders(ctx, types.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, n)
	ids := map[int64]struct{}{}
	for _, order := range list {
		ids[order.ID] = struct{}{}
	}
	assert.Len(t, ids, n)
}
