// Package api contains the versionless JSON API surface: auth, call
// ingest, metrics reports, settings, feedback, and the model catalog.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/llm_observability/backend/internal/app"
	"github.com/ncecere/llm_observability/backend/internal/rbac"
)

type handler struct {
	container *app.Container
}

// Register wires all API endpoints onto the Fiber app.
func Register(fiberApp *fiber.App, container *app.Container) {
	if fiberApp == nil || container == nil {
		return
	}

	h := &handler{container: container}

	authGroup := fiberApp.Group("/auth")
	authGroup.Post("/register", h.register)
	authGroup.Post("/login", h.login)
	authGroup.Post("/refresh", h.refresh)

	authed := authMiddleware(container)

	llm := fiberApp.Group("/llm", authed)
	llm.Post("/log-call", h.logCall)
	llm.Post("/seed", h.seed)
	llm.Post("/complete", h.complete)
	llm.Get("/calls/:id", h.getCall)

	metricsGroup := fiberApp.Group("/metrics", authed)
	metricsGroup.Get("/summary", h.metricsSummary)
	metricsGroup.Get("/token-usage", h.metricsTokenUsage)
	metricsGroup.Get("/latency", h.metricsLatency)
	metricsGroup.Get("/error-rate", h.metricsErrorRate)
	metricsGroup.Get("/cost", h.metricsCost)

	settingsGroup := fiberApp.Group("/settings", authed, requireCapability(rbac.CanManageSettings))
	settingsGroup.Get("/", h.getSettings)
	settingsGroup.Put("/", h.updateSettings)

	feedbackGroup := fiberApp.Group("/feedback", authed)
	feedbackGroup.Post("/", h.createFeedback)
	feedbackGroup.Get("/", requireCapability(rbac.CanModerateFeedback), h.listFeedback)

	modelsGroup := fiberApp.Group("/models", authed)
	modelsGroup.Get("/", h.listModels)
	modelsGroup.Post("/", requireCapability(rbac.CanManageModels), h.createModel)
}
