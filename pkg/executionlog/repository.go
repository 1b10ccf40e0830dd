// Package executionlog records workflow test runs and serves the
// execution history: per-workflow listings, recent activity across all
// workflows, and success rates.
package executionlog

import (
	"context"
	"math"
	"sort"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence"
	"github.com/google/uuid"
)

const defaultRecentLimit = 10

type Repository struct {
	persistence persistence.Persistence
}

func NewRepository(persistence persistence.Persistence) *Repository {
	return &Repository{
		persistence: persistence,
	}
}

// Record persists the result of one test run as a history entry. The
// workflow name is captured at record time.
func (r *Repository) Record(ctx context.Context, workflow *models.Workflow, result *models.TestResult) (*models.ExecutionLog, error) {
	status := models.ExecutionStatusSuccess
	if !result.Success {
		status = models.ExecutionStatusError
	}

	log := &models.ExecutionLog{
		ID:           uuid.New().String(),
		WorkflowID:   workflow.ID,
		WorkflowName: workflow.Name,
		Status:       status,
		Duration:     result.Duration,
		Steps:        append(make([]models.TestStep, 0, len(result.Steps)), result.Steps...),
		Timestamp:    result.Timestamp.UTC(),
	}

	if err := r.persistence.SaveExecutionLog(ctx, log); err != nil {
		return nil, err
	}

	return log, nil
}

// FetchAll returns every recorded run, newest first.
func (r *Repository) FetchAll(ctx context.Context) ([]*models.ExecutionLog, error) {
	logs, err := r.persistence.ExecutionLogs(ctx)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(logs)

	return logs, nil
}

// FetchByWorkflowID returns the recorded runs of one workflow, newest
// first. A workflow with no history yields an empty list.
func (r *Repository) FetchByWorkflowID(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error) {
	logs, err := r.persistence.ExecutionLogsByWorkflowID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(logs)

	return logs, nil
}

// RecentActivity returns the latest runs across all workflows. A
// non-positive limit falls back to the default of 10.
func (r *Repository) RecentActivity(ctx context.Context, limit int) ([]*models.ExecutionLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	logs, err := r.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(logs) > limit {
		logs = logs[:limit]
	}

	return logs, nil
}

// SuccessRate returns the percentage of successful runs for a workflow,
// rounded to the nearest integer. A workflow with no recorded runs
// reports 100.
func (r *Repository) SuccessRate(ctx context.Context, workflowID string) (int, error) {
	logs, err := r.persistence.ExecutionLogsByWorkflowID(ctx, workflowID)
	if err != nil {
		return 0, err
	}

	if len(logs) == 0 {
		return 100, nil
	}

	successes := 0

	for _, log := range logs {
		if log.Status == models.ExecutionStatusSuccess {
			successes++
		}
	}

	return int(math.Round(float64(successes) / float64(len(logs)) * 100)), nil
}

func sortNewestFirst(logs []*models.ExecutionLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
}
