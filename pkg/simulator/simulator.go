// Package simulator provides the test-execution stub: runs are
// simulated with randomized outcomes, one step per node. There are no
// execution semantics behind it; the editor's caller consumes the
// result opaquely.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// Runner simulates workflow test executions.
type Runner struct {
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// TestWorkflow produces a simulated run: roughly 80% of runs succeed
// overall, each node step succeeds 90% of the time, and durations are
// randomized. The workflow itself is never mutated.
func (r *Runner) TestWorkflow(ctx context.Context, workflow *models.Workflow) (*models.TestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.TestResult{
		Success:   rand.Float64() > 0.2,
		Duration:  0.5 + rand.Float64()*3,
		Timestamp: time.Now().UTC(),
		Steps:     make([]models.TestStep, 0, len(workflow.Nodes)),
	}

	for _, node := range workflow.Nodes {
		status := models.StepStatusSuccess
		if rand.Float64() <= 0.1 {
			status = models.StepStatusError
		}

		result.Steps = append(result.Steps, models.TestStep{
			NodeID:   node.ID,
			Status:   status,
			Message:  fmt.Sprintf("%s %s executed", node.Service, node.Action),
			Duration: rand.Float64(),
		})
	}

	r.logger.InfoContext(ctx, "Simulated workflow test run",
		"workflow_id", workflow.ID, "success", result.Success, "steps", len(result.Steps))

	return result, nil
}
