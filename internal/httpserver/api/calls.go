package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/ingest"
	"github.com/ncecere/llm_observability/backend/internal/instrument"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

type logCallRequest struct {
	ModelID          string  `json:"model_id"`
	Model            string  `json:"model"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	LatencyMs        float64 `json:"latency_ms"`
	Status           string  `json:"status"`
	ErrorMessage     string  `json:"error_message"`
	PromptPreview    string  `json:"prompt_preview"`
	ResponsePreview  string  `json:"response_preview"`
}

type callResponse struct {
	ID               int64    `json:"id"`
	ModelID          string   `json:"model_id"`
	PromptTokens     int64    `json:"prompt_tokens"`
	CompletionTokens int64    `json:"completion_tokens"`
	TotalTokens      int64    `json:"total_tokens"`
	LatencyMs        float64  `json:"latency_ms"`
	Status           string   `json:"status"`
	ErrorMessage     *string  `json:"error_message,omitempty"`
	EstimatedCost    *float64 `json:"estimated_cost,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

func (h *handler) logCall(c *fiber.Ctx) error {
	var req logCallRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	rec := ingest.Record{
		ModelName:        req.Model,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
		TotalTokens:      req.TotalTokens,
		LatencyMs:        req.LatencyMs,
		Status:           req.Status,
		ErrorMessage:     req.ErrorMessage,
		Prompt:           req.PromptPreview,
		Response:         req.ResponsePreview,
	}
	if req.ModelID != "" {
		id, err := uuid.Parse(req.ModelID)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusBadRequest, "invalid model_id")
		}
		rec.ModelID = id
	}

	call, err := h.container.Ingest.LogCall(c.UserContext(), currentUser(c).ID, rec)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrUnknownModel):
			return httputil.WriteError(c, fiber.StatusNotFound, "model not found")
		case errors.Is(err, ingest.ErrInvalidLatency),
			errors.Is(err, ingest.ErrInvalidTokens),
			errors.Is(err, ingest.ErrInvalidStatus):
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		default:
			return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to record call")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(toCallResponse(call))
}

func (h *handler) getCall(c *fiber.Ctx) error {
	callID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid call id")
	}

	call, err := h.container.Store.GetCallByID(c.UserContext(), currentUser(c).ID, callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httputil.WriteError(c, fiber.StatusNotFound, "call not found")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to load call")
	}

	return c.JSON(toCallResponse(call))
}

func (h *handler) complete(c *fiber.Ctx) error {
	if h.container.LLM == nil {
		return httputil.WriteError(c, fiber.StatusServiceUnavailable, "llm completion is not configured")
	}

	var req instrument.Request
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.container.LLM.Complete(c.UserContext(), currentUser(c).ID, req)
	if err != nil {
		if errors.Is(err, instrument.ErrDisabled) {
			return httputil.WriteError(c, fiber.StatusServiceUnavailable, err.Error())
		}
		if errors.Is(err, ingest.ErrUnknownModel) {
			return httputil.WriteError(c, fiber.StatusNotFound, "model not found")
		}
		return httputil.WriteError(c, fiber.StatusBadGateway, err.Error())
	}

	return c.JSON(resp)
}

type seedRequest struct {
	Days   int `json:"days" query:"days"`
	PerDay int `json:"per_day" query:"per_day"`
}

func (h *handler) seed(c *fiber.Ctx) error {
	req := seedRequest{Days: 30, PerDay: 25}
	if err := c.QueryParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	created, err := h.container.Ingest.Seed(c.UserContext(), currentUser(c).ID, req.Days, req.PerDay)
	if err != nil {
		if errors.Is(err, ingest.ErrNoModels) {
			return c.JSON(fiber.Map{"created": 0, "message": "No LLM models found. Seed models first."})
		}
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"created": created})
}

func toCallResponse(call store.CallLog) callResponse {
	resp := callResponse{
		ID:               call.ID,
		ModelID:          call.ModelID.String(),
		PromptTokens:     call.PromptTokens,
		CompletionTokens: call.CompletionTokens,
		TotalTokens:      call.TotalTokens,
		LatencyMs:        call.LatencyMs,
		Status:           call.Status,
		ErrorMessage:     call.ErrorMessage,
		CreatedAt:        call.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if call.EstimatedCost.Valid {
		cost := call.EstimatedCost.Decimal.Round(4).InexactFloat64()
		resp.EstimatedCost = &cost
	}
	return resp
}
