// Package persistence provides the storage abstraction for persisted
// workflows and their execution history. The canvas core never touches
// it directly; the repository layer saves and loads whole aggregates
// through this interface.
package persistence

import (
	"context"

	"github.com/flowgrid/flowgrid/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	// Execution logs are append-only; no update or delete.
	ExecutionLogs(ctx context.Context) ([]*models.ExecutionLog, error)
	ExecutionLogsByWorkflowID(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error)
	SaveExecutionLog(ctx context.Context, log *models.ExecutionLog) error

	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
