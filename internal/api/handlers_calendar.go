package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/services"
)

const calendarMonthLayout = "2006-01"

func (handler *Handler) GetCalendar(c *fiber.Ctx) error {
	user := currentUser(c)
	location := user.Location()
	now := handler.now()

	month := services.DayIn(now, location)
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := time.Parse(calendarMonthLayout, raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid month")
		}
		month = services.DayOf(parsed)
	}
	month = services.NewDay(month.Year(), month.Month(), 1)

	days, err := handler.goalService.Calendar(user.ID, month, now, location)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load calendar")
	}
	return c.JSON(fiber.Map{
		"month": month.Time().Format(calendarMonthLayout),
		"days":  days,
	})
}
