// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/flowgrid/flowgrid/pkg/canvas"
	"github.com/flowgrid/flowgrid/pkg/catalog"
	"github.com/flowgrid/flowgrid/pkg/eventbus"
	"github.com/flowgrid/flowgrid/pkg/events"
	"github.com/flowgrid/flowgrid/pkg/executionlog"
	"github.com/flowgrid/flowgrid/pkg/log"
	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/flowgrid/flowgrid/pkg/persistence"
	"github.com/flowgrid/flowgrid/pkg/simulator"
	"github.com/flowgrid/flowgrid/pkg/template"
	"github.com/flowgrid/flowgrid/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	logger     *slog.Logger
	repository *workflow.Repository
	executions *executionlog.Repository
	catalog    catalog.Provider
	templates  *template.Provider
	runner     *simulator.Runner
	validator  *validator.Validate
	eventBus   eventbus.EventBus
}

func NewAPIHandlers(
	repository *workflow.Repository,
	executions *executionlog.Repository,
	catalogProvider catalog.Provider,
	templates *template.Provider,
	runner *simulator.Runner,
	validator *validator.Validate,
	eventBus eventbus.EventBus,
) *APIHandlers {
	return &APIHandlers{
		logger:     log.WithModule("api_handlers"),
		repository: repository,
		executions: executions,
		catalog:    catalogProvider,
		templates:  templates,
		runner:     runner,
		validator:  validator,
		eventBus:   eventBus,
	}
}

// validateGraph loads the submitted aggregate through the canvas graph,
// which rejects connections referencing unknown node ids. Nothing with
// a dangling reference ever reaches storage.
func validateGraph(nodes []*models.Node, connections []*models.Connection) error {
	return canvas.NewGraph().Load(nodes, connections)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.repository.FetchAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := validateGraph(req.Nodes, req.Connections); err != nil {
		return handleServiceError(c, err)
	}

	wf := &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Connections: req.Connections,
	}

	created, err := h.repository.Create(c.Context(), wf)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publish(c, created.ID, events.NewWorkflowSaved(created.ID, len(created.Nodes), len(created.Connections)))

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	// A submitted graph replaces the stored one wholesale; the editor
	// always snapshots nodes and connections together.
	if req.Nodes != nil || req.Connections != nil {
		existing.Nodes = req.Nodes
		existing.Connections = req.Connections
	}

	if err := validateGraph(existing.Nodes, existing.Connections); err != nil {
		return handleServiceError(c, err)
	}

	updated, err := h.repository.Update(c.Context(), id, existing)
	if err != nil {
		return internalError(c, err)
	}

	h.publish(c, updated.ID, events.NewWorkflowSaved(updated.ID, len(updated.Nodes), len(updated.Connections)))

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.repository.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ToggleWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	toggled, err := h.repository.ToggleEnabled(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(toggled)
}

// TestWorkflow runs a simulated execution of the stored workflow.
// Every run is recorded in the execution history; a successful run also
// stamps the workflow's last run time.
func (h *APIHandlers) TestWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.repository.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	result, err := h.runner.TestWorkflow(c.Context(), wf)
	if err != nil {
		return internalError(c, err)
	}

	if _, err := h.executions.Record(c.Context(), wf, result); err != nil {
		return internalError(c, err)
	}

	if result.Success {
		if err := h.repository.RecordRun(c.Context(), id, result.Timestamp); err != nil {
			return internalError(c, err)
		}
	}

	h.publish(c, id, events.NewWorkflowTested(id, result))

	return c.JSON(result)
}

func (h *APIHandlers) GetExecutionLogs(c fiber.Ctx) error {
	logs, err := h.executions.FetchAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions":  logs,
		"total_count": len(logs),
	})
}

func (h *APIHandlers) GetRecentActivity(c fiber.Ctx) error {
	limit := 0

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "Limit must be a positive integer")
		}

		limit = parsed
	}

	logs, err := h.executions.RecentActivity(c.Context(), limit)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(logs)
}

// GetWorkflowExecutions lists the recorded runs of one workflow. A
// workflow without history answers with an empty list, so callers can
// render a fresh workflow's page without special-casing.
func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	logs, err := h.executions.FetchByWorkflowID(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(logs)
}

func (h *APIHandlers) GetWorkflowSuccessRate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	rate, err := h.executions.SuccessRate(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflow_id":  id,
		"success_rate": rate,
	})
}

func (h *APIHandlers) GetServices(c fiber.Ctx) error {
	if query := c.Query("query"); query != "" {
		services, err := h.catalog.Search(c.Context(), query)
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(services)
	}

	services, err := h.catalog.GetAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(services)
}

func (h *APIHandlers) GetServiceCategories(c fiber.Ctx) error {
	categories, err := h.catalog.GetCategories(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(categories)
}

func (h *APIHandlers) GetService(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Service ID is required")
	}

	service, err := h.catalog.GetByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(service)
}

func (h *APIHandlers) GetServiceTriggers(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Service ID is required")
	}

	triggers, err := h.catalog.GetTriggers(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(triggers)
}

func (h *APIHandlers) GetServiceActions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Service ID is required")
	}

	actions, err := h.catalog.GetActions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(actions)
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	if query := c.Query("query"); query != "" {
		return c.JSON(h.templates.Search(c.Context(), query))
	}

	return c.JSON(h.templates.All(c.Context()))
}

func (h *APIHandlers) GetTemplateCategories(c fiber.Ctx) error {
	return c.JSON(h.templates.Categories(c.Context()))
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	tpl, err := h.templates.ByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tpl)
}

// InstantiateTemplate materializes a template into a persisted workflow
// with freshly generated node and connection ids.
func (h *APIHandlers) InstantiateTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	wf, err := h.templates.CreateFromTemplate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	created, err := h.repository.Create(c.Context(), wf)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publish(c, created.ID, events.NewWorkflowSaved(created.ID, len(created.Nodes), len(created.Connections)))

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.repository.HealthCheck(c.Context())

	status := "unhealthy"
	message := "FlowGrid API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "FlowGrid API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) publish(c fiber.Ctx, key string, event eventbus.Event) {
	if h.eventBus == nil {
		return
	}

	// Fire and forget: a failed publish never fails the request.
	if err := h.eventBus.Publish(c.Context(), key, event); err != nil {
		h.logger.Warn("Failed to publish workflow event", "event_type", event.GetType(), "error", err)
	}
}
