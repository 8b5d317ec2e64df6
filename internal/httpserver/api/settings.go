package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/settings"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

type settingsResponse struct {
	HaikuModelEnabled   bool      `json:"haiku_model_enabled"`
	MaxTokensPerRequest int       `json:"max_tokens_per_request"`
	EnableCaching       bool      `json:"enable_caching"`
	Version             int64     `json:"version"`
	UpdatedAt           time.Time `json:"updated_at"`
	UpdatedBy           *string   `json:"updated_by,omitempty"`
}

type updateSettingsRequest struct {
	HaikuModelEnabled   *bool  `json:"haiku_model_enabled"`
	MaxTokensPerRequest *int   `json:"max_tokens_per_request"`
	EnableCaching       *bool  `json:"enable_caching"`
	Version             *int64 `json:"version"`
}

func (h *handler) getSettings(c *fiber.Ctx) error {
	current, err := h.container.Settings.Get(c.UserContext())
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to load settings")
	}
	return c.JSON(toSettingsResponse(current))
}

func (h *handler) updateSettings(c *fiber.Ctx) error {
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Version == nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "version is required")
	}

	update := store.SettingsUpdate{
		HaikuModelEnabled:   req.HaikuModelEnabled,
		MaxTokensPerRequest: req.MaxTokensPerRequest,
		EnableCaching:       req.EnableCaching,
	}

	updated, err := h.container.Settings.Update(c.UserContext(), *req.Version, update, currentUser(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrVersionConflict):
			return httputil.WriteError(c, fiber.StatusConflict, "settings were modified concurrently, re-read and retry")
		case errors.Is(err, settings.ErrInvalidMaxTokens):
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		default:
			return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to update settings")
		}
	}

	return c.JSON(toSettingsResponse(updated))
}

func toSettingsResponse(s store.Settings) settingsResponse {
	resp := settingsResponse{
		HaikuModelEnabled:   s.HaikuModelEnabled,
		MaxTokensPerRequest: s.MaxTokensPerRequest,
		EnableCaching:       s.EnableCaching,
		Version:             s.Version,
		UpdatedAt:           s.UpdatedAt,
	}
	if s.UpdatedBy != nil {
		id := s.UpdatedBy.String()
		resp.UpdatedBy = &id
	}
	return resp
}
