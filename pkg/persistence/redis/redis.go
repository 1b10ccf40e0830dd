// Package redis provides Redis-backed persistence. Workflows and
// execution logs live as JSON values in hashes keyed by entity id.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	workflowsKey     = "flowgrid:workflows"
	executionLogsKey = "flowgrid:execution_logs"
)

// Persistence implements persistence.Persistence over a Redis hash.
type Persistence struct {
	client goredis.UniversalClient
}

// NewPersistence connects using a redis:// URL.
func NewPersistence(ctx context.Context, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

// NewPersistenceWithClient wraps an existing client. Used by tests.
func NewPersistenceWithClient(client goredis.UniversalClient) *Persistence {
	return &Persistence{client: client}
}

func (rp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	entries, err := rp.client.HGetAll(ctx, workflowsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for id, data := range entries {
		var workflow models.Workflow
		if err := json.Unmarshal([]byte(data), &workflow); err != nil {
			return nil, fmt.Errorf("failed to parse workflow %s: %w", id, err)
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, nil
}

func (rp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := rp.client.HGet(ctx, workflowsKey, id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal([]byte(data), &workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (rp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := rp.client.HSet(ctx, workflowsKey, workflow.ID, data).Err(); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (rp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	removed, err := rp.client.HDel(ctx, workflowsKey, id).Result()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (rp *Persistence) ExecutionLogs(ctx context.Context) ([]*models.ExecutionLog, error) {
	entries, err := rp.client.HGetAll(ctx, executionLogsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list execution logs: %w", err)
	}

	logs := make([]*models.ExecutionLog, 0, len(entries))

	for id, data := range entries {
		var log models.ExecutionLog
		if err := json.Unmarshal([]byte(data), &log); err != nil {
			return nil, fmt.Errorf("failed to parse execution log %s: %w", id, err)
		}

		logs = append(logs, &log)
	}

	return logs, nil
}

func (rp *Persistence) ExecutionLogsByWorkflowID(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error) {
	all, err := rp.ExecutionLogs(ctx)
	if err != nil {
		return nil, err
	}

	logs := make([]*models.ExecutionLog, 0, len(all))

	for _, log := range all {
		if log.WorkflowID == workflowID {
			logs = append(logs, log)
		}
	}

	return logs, nil
}

func (rp *Persistence) SaveExecutionLog(ctx context.Context, log *models.ExecutionLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal execution log %s: %w", log.ID, err)
	}

	if err := rp.client.HSet(ctx, executionLogsKey, log.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save execution log %s: %w", log.ID, err)
	}

	return nil
}

func (rp *Persistence) HealthCheck(ctx context.Context) error {
	if err := rp.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (rp *Persistence) Close(_ context.Context) error {
	return rp.client.Close()
}
