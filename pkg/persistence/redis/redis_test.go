package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisPersistence(t *testing.T) *Persistence {
	t.Helper()

	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewPersistenceWithClient(client)
}

func TestPersistence_SaveAndFetch(t *testing.T) {
	p := setupRedisPersistence(t)

	workflow := &models.Workflow{
		ID:   "wf-1",
		Name: "Email to Slack",
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTrigger, Service: "Gmail", Action: "New Email", Position: models.Position{X: 250.5, Y: 310.25}},
		},
		Connections: []*models.Connection{},
	}

	require.NoError(t, p.SaveWorkflow(t.Context(), workflow))

	fetched, err := p.WorkflowByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Email to Slack", fetched.Name)
	require.Len(t, fetched.Nodes, 1)
	assert.InDelta(t, 250.5, fetched.Nodes[0].Position.X, 1e-9)
	assert.InDelta(t, 310.25, fetched.Nodes[0].Position.Y, 1e-9)
}

func TestPersistence_WorkflowByID_NotFound(t *testing.T) {
	p := setupRedisPersistence(t)

	workflow, err := p.WorkflowByID(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
	assert.Nil(t, workflow)
}

func TestPersistence_Workflows(t *testing.T) {
	p := setupRedisPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "First workflow"}))
	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-2", Name: "Second workflow"}))

	workflows, err := p.Workflows(t.Context())
	require.NoError(t, err)
	assert.Len(t, workflows, 2)
}

func TestPersistence_SaveOverwrites(t *testing.T) {
	p := setupRedisPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "Before rename"}))
	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "After rename"}))

	fetched, err := p.WorkflowByID(t.Context(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "After rename", fetched.Name)

	workflows, err := p.Workflows(t.Context())
	require.NoError(t, err)
	assert.Len(t, workflows, 1)
}

func TestPersistence_Delete(t *testing.T) {
	p := setupRedisPersistence(t)

	require.NoError(t, p.SaveWorkflow(t.Context(), &models.Workflow{ID: "wf-1", Name: "To delete"}))
	require.NoError(t, p.DeleteWorkflow(t.Context(), "wf-1"))

	_, err := p.WorkflowByID(t.Context(), "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.DeleteWorkflow(t.Context(), "wf-1")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_ExecutionLogs(t *testing.T) {
	p := setupRedisPersistence(t)

	require.NoError(t, p.SaveExecutionLog(t.Context(), &models.ExecutionLog{
		ID:           "ex-1",
		WorkflowID:   "wf-1",
		WorkflowName: "Email to Slack",
		Status:       models.ExecutionStatusSuccess,
		Duration:     2.25,
		Steps: []models.TestStep{
			{NodeID: "n1", Status: models.StepStatusSuccess, Message: "Gmail New Email executed", Duration: 0.4},
		},
		Timestamp: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, p.SaveExecutionLog(t.Context(), &models.ExecutionLog{
		ID:         "ex-2",
		WorkflowID: "wf-2",
		Status:     models.ExecutionStatusError,
		Timestamp:  time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC),
	}))

	logs, err := p.ExecutionLogs(t.Context())
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	byWorkflow, err := p.ExecutionLogsByWorkflowID(t.Context(), "wf-1")
	require.NoError(t, err)
	require.Len(t, byWorkflow, 1)
	assert.Equal(t, "ex-1", byWorkflow[0].ID)
	assert.InDelta(t, 2.25, byWorkflow[0].Duration, 1e-9)
	require.Len(t, byWorkflow[0].Steps, 1)
	assert.Equal(t, models.StepStatusSuccess, byWorkflow[0].Steps[0].Status)

	empty, err := p.ExecutionLogsByWorkflowID(t.Context(), "wf-unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := setupRedisPersistence(t)

	assert.NoError(t, p.HealthCheck(t.Context()))
}
