package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-orders-api/internal/platform/temporal/sequences"
)

const (
	// OrderImportTaskQueue is polled by cmd/worker.
	OrderImportTaskQueue = "ORDER_IMPORT"
	// OrderImportWorkflowName is the registered workflow type.
	OrderImportWorkflowName = "orders.workflows.Import"
)

// OrderImportWorkflow durably commits one CSV import batch.
func OrderImportWorkflow(ctx workflow.Context, batch orderactivities.ImportBatch) (*types.ImportResult, error) {
	return sequences.RunOrderImportSequence(ctx, batch)
}
