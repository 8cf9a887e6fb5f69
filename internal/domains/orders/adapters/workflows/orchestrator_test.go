package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

func TestInlineImportWorkflows_CommitsThroughService(t *testing.T) {
	repo := memory.NewRepository()
	orchestrator := NewInlineImportWorkflows(application.NewService(repo))

	order, err := domain.NewOrder(9, 2, 3)
	require.NoError(t, err)

	result, err := orchestrator.CommitImport(context.Background(), []*domain.Order{order})
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, result.OrderIDs)

	next, err := repo.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), next)
}

func TestUnconfiguredOrchestratorsFail(t *testing.T) {
	var inline *InlineImportWorkflows
	_, err := inline.CommitImport(context.Background(), nil)
	assert.Error(t, err)

	temporal := &TemporalImportWorkflows{}
	_, err = temporal.CommitImport(context.Background(), nil)
	assert.Error(t, err)
}

func TestBuildImportWorkflowID(t *testing.T) {
	assert.Equal(t, "order-import-abc", buildImportWorkflowID("abc"))
}
