package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowgrid/flowgrid/pkg/catalog"
	"github.com/flowgrid/flowgrid/pkg/eventbus"
	"github.com/flowgrid/flowgrid/pkg/events"
	"github.com/flowgrid/flowgrid/pkg/executionlog"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence/file"
	"github.com/flowgrid/flowgrid/pkg/simulator"
	"github.com/flowgrid/flowgrid/pkg/template"
	"github.com/flowgrid/flowgrid/pkg/web"
	"github.com/flowgrid/flowgrid/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *workflow.Repository) {
	return setupTestAppWithBus(t, nil)
}

func setupTestAppWithBus(t *testing.T, eventBus eventbus.EventBus) (*fiber.App, *workflow.Repository) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	repository := workflow.NewRepository(persistence)
	executions := executionlog.NewRepository(persistence)
	templates := template.NewProvider(template.BuiltIn())
	runner := simulator.NewRunner(slog.Default())
	validate := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(repository, executions, catalog.NewStatic(), templates, runner, validate, eventBus)

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/toggle", handlers.ToggleWorkflow)
	w.Post("/:id/test", handlers.TestWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)
	w.Get("/:id/success-rate", handlers.GetWorkflowSuccessRate)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutionLogs)
	e.Get("/recent", handlers.GetRecentActivity)

	s := app.Group("/services")
	s.Get("/", handlers.GetServices)
	s.Get("/categories", handlers.GetServiceCategories)
	s.Get("/:id", handlers.GetService)
	s.Get("/:id/triggers", handlers.GetServiceTriggers)
	s.Get("/:id/actions", handlers.GetServiceActions)

	tp := app.Group("/templates")
	tp.Get("/", handlers.GetTemplates)
	tp.Get("/categories", handlers.GetTemplateCategories)
	tp.Get("/:id", handlers.GetTemplate)
	tp.Post("/:id/instantiate", handlers.InstantiateTemplate)

	app.Get("/health", handlers.HealthCheck)

	return app, repository
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, payload
}

func TestAPIHandlers_CreateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:        "Email to Slack",
		Description: "Posts to Slack on new email",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Email to Slack", created.Name)
	assert.False(t, created.Enabled)
	assert.NotNil(t, created.Nodes)
}

func TestAPIHandlers_CreateWorkflow_ValidationFailures(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name string
		body any
	}{
		{"name too short", web.CreateWorkflowRequest{Name: "ab"}},
		{"name missing", map[string]any{"description": "no name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/workflows/", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_CreateWorkflow_RejectsDanglingConnection(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name: "Broken graph",
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTrigger, Service: "Gmail", Action: "New Email"},
		},
		Connections: []*models.Connection{
			{ID: "c1", SourceNodeID: "n1", TargetNodeID: "ghost"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_GetWorkflow(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "Email to Slack"})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodGet, "/workflows/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow

	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
}

func TestAPIHandlers_GetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_UpdateWorkflow_ReplacesGraph(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "Email to Slack"})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPatch, "/workflows/"+created.ID, web.UpdateWorkflowRequest{
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTrigger, Service: "Gmail", Action: "New Email", Position: models.Position{X: 100, Y: 100}},
			{ID: "n2", Type: models.NodeTypeAction, Service: "Slack", Action: "Send Message", Position: models.Position{X: 500, Y: 100}},
		},
		Connections: []*models.Connection{
			{ID: "c1", SourceNodeID: "n1", TargetNodeID: "n2"},
		},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Workflow

	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Len(t, updated.Nodes, 2)
	assert.Len(t, updated.Connections, 1)
	assert.Equal(t, "Email to Slack", updated.Name)
}

func TestAPIHandlers_UpdateWorkflow_RejectsDanglingConnection(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "Email to Slack"})
	require.NoError(t, err)

	resp, _ := doJSON(t, app, http.MethodPatch, "/workflows/"+created.ID, web.UpdateWorkflowRequest{
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTrigger, Service: "Gmail", Action: "New Email"},
		},
		Connections: []*models.Connection{
			{ID: "c1", SourceNodeID: "ghost", TargetNodeID: "n1"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The stored workflow is untouched.
	fetched, err := repository.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Nodes)
}

func TestAPIHandlers_DeleteWorkflow(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "To delete"})
	require.NoError(t, err)

	resp, _ := doJSON(t, app, http.MethodDelete, "/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/workflows/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ToggleWorkflow(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "Toggle me"})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled models.Workflow

	require.NoError(t, json.Unmarshal(body, &toggled))
	assert.True(t, toggled.Enabled)
}

func TestAPIHandlers_TestWorkflow(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{
		Name: "Email to Slack",
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTrigger, Service: "Gmail", Action: "New Email"},
			{ID: "n2", Type: models.NodeTypeAction, Service: "Slack", Action: "Send Message"},
		},
	})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/test", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.TestResult

	require.NoError(t, json.Unmarshal(body, &result))
	assert.Len(t, result.Steps, 2)

	// A successful run stamps last_run.
	if result.Success {
		fetched, err := repository.FetchByID(t.Context(), created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.LastRun)
	}
}

func TestAPIHandlers_TestWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/missing/test", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_TestWorkflow_RecordsExecutionLog(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{
		Name: "Email to Slack",
		Nodes: []*models.Node{
			{ID: "n1", Type: models.NodeTypeTrigger, Service: "Gmail", Action: "New Email"},
		},
	})
	require.NoError(t, err)

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/test", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.TestResult

	require.NoError(t, json.Unmarshal(body, &result))

	resp, body = doJSON(t, app, http.MethodGet, "/executions/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Executions []models.ExecutionLog `json:"executions"`
		TotalCount int                   `json:"total_count"`
	}

	require.NoError(t, json.Unmarshal(body, &listing))
	require.Equal(t, 1, listing.TotalCount)

	logged := listing.Executions[0]
	assert.Equal(t, created.ID, logged.WorkflowID)
	assert.Equal(t, "Email to Slack", logged.WorkflowName)
	assert.Len(t, logged.Steps, 1)

	wantStatus := models.ExecutionStatusError
	if result.Success {
		wantStatus = models.ExecutionStatusSuccess
	}

	assert.Equal(t, wantStatus, logged.Status)

	// The per-workflow history sees the same run.
	resp, body = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID+"/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []models.ExecutionLog

	require.NoError(t, json.Unmarshal(body, &history))
	assert.Len(t, history, 1)
}

func TestAPIHandlers_GetExecutionLogs_Empty(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/executions/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		TotalCount int `json:"total_count"`
	}

	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, 0, listing.TotalCount)
}

func TestAPIHandlers_GetRecentActivity(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "Email to Slack"})
	require.NoError(t, err)

	for range 3 {
		resp, _ := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/test", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/executions/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recent []models.ExecutionLog

	require.NoError(t, json.Unmarshal(body, &recent))
	assert.Len(t, recent, 2)

	resp, _ = doJSON(t, app, http.MethodGet, "/executions/recent?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_GetWorkflowSuccessRate(t *testing.T) {
	app, repository := setupTestApp(t)

	created, err := repository.Create(t.Context(), &models.Workflow{Name: "Email to Slack"})
	require.NoError(t, err)

	// No recorded runs yet.
	resp, body := doJSON(t, app, http.MethodGet, "/workflows/"+created.ID+"/success-rate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		WorkflowID  string `json:"workflow_id"`
		SuccessRate int    `json:"success_rate"`
	}

	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, created.ID, stats.WorkflowID)
	assert.Equal(t, 100, stats.SuccessRate)

	for range 4 {
		resp, _ := doJSON(t, app, http.MethodPost, "/workflows/"+created.ID+"/test", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID+"/success-rate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &stats))

	// The rate reflects the recorded history.
	resp, body = doJSON(t, app, http.MethodGet, "/workflows/"+created.ID+"/executions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []models.ExecutionLog

	require.NoError(t, json.Unmarshal(body, &history))
	require.Len(t, history, 4)

	successes := 0
	for _, log := range history {
		if log.Status == models.ExecutionStatusSuccess {
			successes++
		}
	}

	assert.Equal(t, successes*100/4, stats.SuccessRate)
}

// failingEventBus rejects every publish so tests can assert the API
// treats event delivery as fire and forget.
type failingEventBus struct{}

func (failingEventBus) Publish(context.Context, string, eventbus.Event) error {
	return errors.New("broker unavailable")
}

func (failingEventBus) Handle(events.EventType, eventbus.EventHandler) {}

func (failingEventBus) Subscribe(context.Context) error { return nil }

func (failingEventBus) Close() error { return nil }

func (failingEventBus) GenerateID() string { return "" }

func TestAPIHandlers_PublishFailureDoesNotFailRequest(t *testing.T) {
	app, _ := setupTestAppWithBus(t, failingEventBus{})

	resp, body := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name: "Email to Slack",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
}

func TestAPIHandlers_GetServices(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/services/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var services []models.Service

	require.NoError(t, json.Unmarshal(body, &services))
	assert.Len(t, services, 6)
}

func TestAPIHandlers_GetServices_Search(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/services/?query=slack", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var services []models.Service

	require.NoError(t, json.Unmarshal(body, &services))
	require.Len(t, services, 1)
	assert.Equal(t, "slack", services[0].ID)
}

func TestAPIHandlers_GetService(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/services/gmail", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var service models.Service

	require.NoError(t, json.Unmarshal(body, &service))
	assert.Equal(t, "Gmail", service.Name)

	resp, _ = doJSON(t, app, http.MethodGet, "/services/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_GetServiceTriggersAndActions(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/services/schedule/triggers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var triggers []models.Operation

	require.NoError(t, json.Unmarshal(body, &triggers))
	assert.Len(t, triggers, 2)

	resp, body = doJSON(t, app, http.MethodGet, "/services/gmail/actions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var actions []models.Operation

	require.NoError(t, json.Unmarshal(body, &actions))
	require.Len(t, actions, 1)
	assert.Equal(t, "Send Email", actions[0].Name)
}

func TestAPIHandlers_GetTemplates(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/templates/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var templates []models.Template

	require.NoError(t, json.Unmarshal(body, &templates))
	require.NotEmpty(t, templates)

	// Most popular first.
	for i := 1; i < len(templates); i++ {
		assert.GreaterOrEqual(t, templates[i-1].Popularity, templates[i].Popularity)
	}
}

func TestAPIHandlers_InstantiateTemplate(t *testing.T) {
	app, repository := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/templates/email-to-slack/instantiate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Nodes, 2)
	assert.Len(t, created.Connections, 1)

	// The instantiated workflow was persisted.
	fetched, err := repository.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestAPIHandlers_InstantiateTemplate_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/templates/missing/instantiate", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any

	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}
