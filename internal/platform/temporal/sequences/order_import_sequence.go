package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
)

// RunOrderImportSequence commits a decoded order batch through the CommitImport activity.
func RunOrderImportSequence(ctx workflow.Context, batch orderactivities.ImportBatch) (*types.ImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order import sequence started", "orders", len(batch.Orders))
	commitOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{"InvalidInput"},
		},
	}

	var result types.ImportResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, commitOptions), orderactivities.CommitImportActivityName, batch).Get(ctx, &result)
	if err != nil {
		logger.Error("order import sequence failed", "orders", len(batch.Orders), "error", err)
		return nil, err
	}
	logger.Info("order import sequence committed", "batchId", result.BatchID, "imported", result.Imported)
	return &result, nil
}
