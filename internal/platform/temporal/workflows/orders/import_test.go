package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
)

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(OrderImportWorkflow, workflow.RegisterOptions{Name: OrderImportWorkflowName})
	return env
}

func TestOrderImportWorkflow_CommitsBatch(t *testing.T) {
	env := newEnv(t)
	repo := memory.NewRepository()
	acts := orderactivities.NewActivities(application.NewService(repo))
	env.RegisterActivityWithOptions(acts.CommitImport, activity.RegisterOptions{Name: orderactivities.CommitImportActivityName})

	first, err := domain.NewOrder(5, 10, 1)
	require.NoError(t, err)
	second, err := domain.NewOrder(6, 11, 2)
	require.NoError(t, err)

	env.ExecuteWorkflow(OrderImportWorkflowName, orderactivities.ImportBatch{Orders: []*domain.Order{first, second}})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result types.ImportResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, []int64{5, 6}, result.OrderIDs)

	stored, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestOrderImportWorkflow_UnconfiguredActivityFailsWorkflow(t *testing.T) {
	env := newEnv(t)
	acts := orderactivities.NewActivities(nil)
	env.RegisterActivityWithOptions(acts.CommitImport, activity.RegisterOptions{Name: orderactivities.CommitImportActivityName})

	env.ExecuteWorkflow(OrderImportWorkflowName, orderactivities.ImportBatch{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}
