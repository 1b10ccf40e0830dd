// Package postgresql provides PostgreSQL persistence. Workflows are
// stored as rows with the node and connection collections in JSONB, so
// the aggregate round-trips whole.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence"
	_ "github.com/lib/pq" // postgres driver
)

// Persistence implements persistence.Persistence over PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings, and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	postgres := &Persistence{db: database, logger: logger}

	migrationManager := newMigrationManager(logger, database, migrations())
	if err := migrationManager.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, description, enabled, nodes, connections, created_at, updated_at, last_run
		FROM workflows
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, name, description, enabled, nodes, connections, created_at, updated_at, last_run
		FROM workflows
		WHERE id = $1`, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, err
	}

	return workflow, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	nodes, err := json.Marshal(workflow.Nodes)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	connections, err := json.Marshal(workflow.Connections)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, description, enabled, nodes, connections, created_at, updated_at, last_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			enabled = EXCLUDED.enabled,
			nodes = EXCLUDED.nodes,
			connections = EXCLUDED.connections,
			updated_at = EXCLUDED.updated_at,
			last_run = EXCLUDED.last_run`,
		workflow.ID, workflow.Name, workflow.Description, workflow.Enabled,
		nodes, connections, workflow.CreatedAt, workflow.UpdatedAt, workflow.LastRun)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (p *Persistence) ExecutionLogs(ctx context.Context) ([]*models.ExecutionLog, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, workflow_id, workflow_name, status, duration, steps, created_at
		FROM execution_logs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution logs: %w", err)
	}
	defer rows.Close()

	return collectExecutionLogs(rows)
}

func (p *Persistence) ExecutionLogsByWorkflowID(ctx context.Context, workflowID string) ([]*models.ExecutionLog, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, workflow_id, workflow_name, status, duration, steps, created_at
		FROM execution_logs
		WHERE workflow_id = $1
		ORDER BY created_at DESC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution logs for workflow %s: %w", workflowID, err)
	}
	defer rows.Close()

	return collectExecutionLogs(rows)
}

func (p *Persistence) SaveExecutionLog(ctx context.Context, log *models.ExecutionLog) error {
	steps, err := json.Marshal(log.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal execution log %s: %w", log.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO execution_logs (id, workflow_id, workflow_name, status, duration, steps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.WorkflowID, log.WorkflowName, log.Status, log.Duration, steps, log.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save execution log %s: %w", log.ID, err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		nodes       []byte
		connections []byte
		lastRun     sql.NullTime
	)

	err := row.Scan(&workflow.ID, &workflow.Name, &workflow.Description, &workflow.Enabled,
		&nodes, &connections, &workflow.CreatedAt, &workflow.UpdatedAt, &lastRun)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(nodes, &workflow.Nodes); err != nil {
		return nil, fmt.Errorf("failed to parse nodes for workflow %s: %w", workflow.ID, err)
	}

	if err := json.Unmarshal(connections, &workflow.Connections); err != nil {
		return nil, fmt.Errorf("failed to parse connections for workflow %s: %w", workflow.ID, err)
	}

	if lastRun.Valid {
		t := lastRun.Time.UTC()
		workflow.LastRun = &t
	}

	return &workflow, nil
}

func collectExecutionLogs(rows *sql.Rows) ([]*models.ExecutionLog, error) {
	logs := make([]*models.ExecutionLog, 0)

	for rows.Next() {
		var (
			log   models.ExecutionLog
			steps []byte
		)

		err := rows.Scan(&log.ID, &log.WorkflowID, &log.WorkflowName, &log.Status,
			&log.Duration, &steps, &log.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution log: %w", err)
		}

		if err := json.Unmarshal(steps, &log.Steps); err != nil {
			return nil, fmt.Errorf("failed to parse steps for execution log %s: %w", log.ID, err)
		}

		log.Timestamp = log.Timestamp.UTC()
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate execution logs: %w", err)
	}

	return logs, nil
}
