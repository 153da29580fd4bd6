package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/services"
)

// RunNotifications runs one notification tick synchronously and returns its
// report. force=true ignores the reminder hour.
func (handler *Handler) RunNotifications(c *fiber.Ctx) error {
	if handler.notifier == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "notifications are not configured")
	}

	report, err := handler.notifier.Tick(c.UserContext(), services.TickOptions{Force: c.QueryBool("force")})
	if err != nil {
		return handler.respondServiceError(c, err, "notification run failed")
	}
	return c.JSON(report)
}
