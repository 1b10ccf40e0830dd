// Package main provides the FlowGrid API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/flowgrid/flowgrid/pkg/catalog"
	"github.com/flowgrid/flowgrid/pkg/eventbus"
	"github.com/flowgrid/flowgrid/pkg/executionlog"
	"github.com/flowgrid/flowgrid/pkg/persistence"
	"github.com/flowgrid/flowgrid/pkg/simulator"
	"github.com/flowgrid/flowgrid/pkg/template"
	"github.com/flowgrid/flowgrid/pkg/web"
	"github.com/flowgrid/flowgrid/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	catalog     catalog.Provider
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	catalogProvider catalog.Provider,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		catalog:     catalogProvider,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	repository := workflow.NewRepository(a.persistence)
	executions := executionlog.NewRepository(a.persistence)
	templates := template.NewProvider(template.BuiltIn())
	runner := simulator.NewRunner(a.logger)

	handlers := web.NewAPIHandlers(repository, executions, a.catalog, templates, runner, a.validate, a.eventBus)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowGrid API")
	})

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

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Get("/categories", handlers.GetTemplateCategories)
	t.Get("/:id", handlers.GetTemplate)
	t.Post("/:id/instantiate", handlers.InstantiateTemplate)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
