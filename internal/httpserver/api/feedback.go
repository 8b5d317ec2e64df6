package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

type createFeedbackRequest struct {
	LLMCallID int64   `json:"llm_call_id"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment"`
}

type feedbackResponse struct {
	ID        int64     `json:"id"`
	LLMCallID int64     `json:"llm_call_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *handler) createFeedback(c *fiber.Ctx) error {
	var req createFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return httputil.WriteError(c, fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	user := currentUser(c)

	// The call must exist and belong to the caller.
	if _, err := h.container.Store.GetCallByID(c.UserContext(), user.ID, req.LLMCallID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httputil.WriteError(c, fiber.StatusNotFound, "call not found")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to load call")
	}

	fb, err := h.container.Store.CreateFeedback(c.UserContext(), req.LLMCallID, user.ID, req.Rating, req.Comment)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to record feedback")
	}

	return c.Status(fiber.StatusCreated).JSON(toFeedbackResponse(fb))
}

func (h *handler) listFeedback(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	search := c.Query("search")

	items, err := h.container.Store.ListFeedback(c.UserContext(), search, limit, offset)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "failed to list feedback")
	}

	out := make([]feedbackResponse, 0, len(items))
	for _, fb := range items {
		out = append(out, toFeedbackResponse(fb))
	}
	return c.JSON(out)
}

func toFeedbackResponse(fb store.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:        fb.ID,
		LLMCallID: fb.LLMCallID,
		UserID:    fb.UserID.String(),
		Rating:    fb.Rating,
		Comment:   fb.Comment,
		CreatedAt: fb.CreatedAt,
	}
}
