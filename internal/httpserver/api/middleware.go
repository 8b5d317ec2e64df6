package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/llm_observability/backend/internal/app"
	"github.com/ncecere/llm_observability/backend/internal/httpserver/httputil"
	"github.com/ncecere/llm_observability/backend/internal/rbac"
	"github.com/ncecere/llm_observability/backend/internal/store"
)

const (
	localsUserKey    = "api.user"
	localsRoleKey    = "api.role"
	bearerPrefix     = "bearer "
	authHeader       = "Authorization"
	unauthorizedMsg  = "invalid or expired token"
	authRequiredMsg  = "authorization required"
	adminRequiredMsg = "admin role required"
)

func authMiddleware(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearer(c)
		if token == "" {
			return httputil.WriteError(c, fiber.StatusUnauthorized, authRequiredMsg)
		}

		user, role, err := container.Auth.AuthorizeAccessToken(c.UserContext(), token)
		if err != nil {
			return httputil.WriteError(c, fiber.StatusUnauthorized, unauthorizedMsg)
		}

		c.Locals(localsUserKey, user)
		c.Locals(localsRoleKey, role)
		return c.Next()
	}
}

// requireCapability gates a route on an rbac predicate.
func requireCapability(allowed func(rbac.Role) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !allowed(currentRole(c)) {
			return httputil.WriteError(c, fiber.StatusForbidden, adminRequiredMsg)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) store.User {
	user, _ := c.Locals(localsUserKey).(store.User)
	return user
}

func currentRole(c *fiber.Ctx) rbac.Role {
	role, _ := c.Locals(localsRoleKey).(rbac.Role)
	return role
}

func extractBearer(c *fiber.Ctx) string {
	raw := strings.TrimSpace(c.Get(authHeader))
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(raw), bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(raw[len(bearerPrefix):])
}
