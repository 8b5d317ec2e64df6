package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

type createModelRequest struct {
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	CostPer1KTokens float64 `json:"cost_per_1k_tokens"`
}

type modelResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Provider        string    `json:"provider"`
	CostPer1KTokens float64   `json:"cost_per_1k_tokens"`
	CreatedAt       time.Time `json:"created_at"`
}

func (h *handler) listModels(c *fiber.Ctx) error {
	models, err := h.container.Store.ListModels(c.UserContext())
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to list models")
	}

	out := make([]modelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, toModelResponse(m))
	}
	return c.JSON(out)
}

func (h *handler) createModel(c *fiber.Ctx) error {
	var req createModelRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Provider == "" {
		return httputil.WriteError(c, fiber.StatusBadRequest, "name and provider are required")
	}
	if req.CostPer1KTokens < 0 {
		return httputil.WriteError(c, fiber.StatusBadRequest, "cost_per_1k_tokens must be >= 0")
	}

	model, err := h.container.Store.CreateModel(c.UserContext(), req.Name, req.Provider, decimal.NewFromFloat(req.CostPer1KTokens))
	if err != nil {
		return httputil.WriteError(c, fiber.StatusConflict, "model already exists or could not be created")
	}

	return c.Status(fiber.StatusCreated).JSON(toModelResponse(model))
}

func toModelResponse(m store.Model) modelResponse {
	return modelResponse{
		ID:              m.ID.String(),
		Name:            m.Name,
		Provider:        m.Provider,
		CostPer1KTokens: m.CostPer1KTokens.InexactFloat64(),
		CreatedAt:       m.CreatedAt,
	}
}
