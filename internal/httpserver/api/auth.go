package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/llm_observability/backend/internal/auth"
	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken      string       `json:"access_token"`
	TokenType        string       `json:"token_type"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             userResponse `json:"user"`
}

func (h *handler) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.container.Auth.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return httputil.WriteError(c, fiber.StatusConflict, err.Error())
		}
		return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
	}

	// New accounts are logged in immediately.
	pair, err := h.container.Auth.IssueTokenPair(user)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusInternalServerError, "registration succeeded but token issuance failed")
	}

	return c.Status(fiber.StatusCreated).JSON(toTokenResponse(pair, user))
}

func (h *handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pair, user, err := h.container.Auth.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return httputil.WriteError(c, fiber.StatusUnauthorized, "invalid email or password")
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, "login failed")
	}

	return c.JSON(toTokenResponse(pair, user))
}

func (h *handler) refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pair, user, err := h.container.Auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return httputil.WriteError(c, fiber.StatusUnauthorized, unauthorizedMsg)
	}

	return c.JSON(toTokenResponse(pair, user))
}

func toUserResponse(user store.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func toTokenResponse(pair *auth.TokenPair, user store.User) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		TokenType:        "bearer",
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		User:             toUserResponse(user),
	}
}
