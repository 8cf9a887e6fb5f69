package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.ImportOrchestrator = (*TemporalImportWorkflows)(nil)
	_ ports.ImportOrchestrator = (*InlineImportWorkflows)(nil)
)

// TemporalImportWorkflows runs order imports on a Temporal cluster.
type TemporalImportWorkflows struct {
	client    client.Client
	taskQueue string
	newID     func() string
}

// NewTemporalImportWorkflows wires a Temporal client into the orchestrator.
func NewTemporalImportWorkflows(c client.Client) *TemporalImportWorkflows {
	return &TemporalImportWorkflows{client: c, taskQueue: orderworkflows.OrderImportTaskQueue, newID: uuid.NewString}
}

// CommitImport starts the import workflow and blocks until it completes.
func (o *TemporalImportWorkflows) CommitImport(ctx context.Context, orders []*domain.Order) (*types.ImportResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal import workflows not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                    buildImportWorkflowID(o.newID()),
		TaskQueue:             o.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, orderworkflows.OrderImportWorkflowName, orderactivities.ImportBatch{Orders: orders})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("%w: import %s already started", application.ErrConflict, options.ID)
		}
		return nil, err
	}
	var result types.ImportResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InlineImportWorkflows commits through the service directly, for tests or when Temporal is not configured.
type InlineImportWorkflows struct {
	service ports.Service
}

// NewInlineImportWorkflows wraps the order service for synchronous execution.
func NewInlineImportWorkflows(service ports.Service) *InlineImportWorkflows {
	return &InlineImportWorkflows{service: service}
}

func (o *InlineImportWorkflows) CommitImport(ctx context.Context, orders []*domain.Order) (*types.ImportResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline import workflows not configured")
	}
	return o.service.CommitImport(ctx, orders)
}

func buildImportWorkflowID(id string) string {
	return fmt.Sprintf("order-import-%s", id)
}
