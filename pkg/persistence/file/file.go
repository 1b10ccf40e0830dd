// Package file provides file-based persistence: one JSON document per
// workflow under a root directory, execution logs in an executions/
// subdirectory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string
}

// NewPersistence creates a file store rooted at the given directory,
// creating it if needed. Accepts both a plain path and a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(filepath.Join(cleanRoot, executionsDir), 0o755); err != nil {
		panic(fmt.Errorf("failed to create workflow directory %s: %w", cleanRoot, err))
	}

	return &Persistence{root: cleanRoot}
}

const executionsDir = "executions"

func (fp *Persistence) workflowPath(id string) string {
	return filepath.Join(fp.root, id+".json")
}

func (fp *Persistence) executionLogPath(id string) string {
	return filepath.Join(fp.root, executionsDir, id+".json")
}

func (fp *Persistence) Workflows(_ context.Context) ([]*models.Workflow, error) {
	entries, err := os.ReadDir(fp.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow directory: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(fp.root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read workflow file %s: %w", entry.Name(), err)
		}

		var workflow models.Workflow
		if err := json.Unmarshal(data, &workflow); err != nil {
			return nil, fmt.Errorf("failed to parse workflow file %s: %w", entry.Name(), err)
		}

		workflows = append(workflows, &workflow)
	}

	return workflows, nil
}

func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	data, err := os.ReadFile(fp.workflowPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	if err := os.WriteFile(fp.workflowPath(workflow.ID), data, 0o644); err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (fp *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	err := os.Remove(fp.workflowPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}

func (fp *Persistence) ExecutionLogs(_ context.Context) ([]*models.ExecutionLog, error) {
	entries, err := os.ReadDir(filepath.Join(fp.root, executionsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return make([]*models.ExecutionLog, 0), nil
		}

		return nil, fmt.Errorf("failed to read executions directory: %w", err)
	}

	logs := make([]*models.ExecutionLog, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(fp.root, executionsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read execution log file %s: %w", entry.Name(), err)
		}

		var log models.ExecutionLog
		if err := json.Unmarshal(data, &log); err != nil {
			return nil, fmt.Errorf("failed to parse execution log file %s: %w", entry.Name(), err)
		}

		logs = append(logs, &log)
	}

	return logs, nil
}

func (fp *Persistence) ExecutionLogsByWorkflowID(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error) {
	all, err := fp.ExecutionLogs(ctx)
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

func (fp *Persistence) SaveExecutionLog(_ context.Context, log *models.ExecutionLog) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution log %s: %w", log.ID, err)
	}

	if err := os.WriteFile(fp.executionLogPath(log.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write execution log %s: %w", log.ID, err)
	}

	return nil
}

func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for file storage.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
