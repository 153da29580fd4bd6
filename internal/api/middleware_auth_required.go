package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/models"
	"github.com/terraincognita07/goaltrack/internal/security"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}

// OperatorRequired guards operator endpoints with a static token. Without a
// configured token the endpoints do not exist.
func (handler *Handler) OperatorRequired(c *fiber.Ctx) error {
	if handler.operatorToken == "" {
		return apiError(c, fiber.StatusNotFound, "not found")
	}
	provided := strings.TrimSpace(c.Get(operatorTokenHeader))
	if !security.TokensMatch(provided, handler.operatorToken) {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(contextUserKey).(*models.User)
	return user
}
