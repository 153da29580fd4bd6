package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/models"
	"github.com/terraincognita07/goaltrack/internal/services"
)

func (handler *Handler) ListGoals(c *fiber.Ctx) error {
	user := currentUser(c)
	goalType := c.Query("type")

	day, err := parseOptionalDay(c.Query("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	var goals []models.Goal
	if day != nil {
		goals, err = handler.goalService.ListDueOn(user.ID, *day, goalType)
	} else {
		goals, err = handler.goalService.List(user.ID, goalType)
	}
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load goals")
	}
	return c.JSON(goals)
}

func (handler *Handler) CreateGoal(c *fiber.Ctx) error {
	user := currentUser(c)
	input := goalInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	serviceInput, err := buildGoalInput(input)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	goal, err := handler.goalService.Create(user.ID, serviceInput, handler.userToday(c))
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create goal")
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// UpdateGoal either records a completion for date or, without a date,
// changes the goal status. Either way a completed result may earn a reward.
func (handler *Handler) UpdateGoal(c *fiber.Ctx) error {
	user := currentUser(c)
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}

	input := goalUpdateInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	status := strings.TrimSpace(input.Status)
	if !models.IsValidGoalStatus(status) {
		return apiError(c, fiber.StatusBadRequest, "invalid goal status")
	}

	day, err := parseOptionalDay(input.Date)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	if day != nil {
		completion, err := handler.goalService.SetCompletion(user.ID, goalID, *day, status == models.GoalStatusCompleted)
		if err != nil {
			return handler.respondServiceError(c, err, "failed to update goal")
		}
		rewarded := false
		if completion.Completed {
			rewarded = handler.checkReward(c, user.ID, *day)
		}
		return c.JSON(fiber.Map{"success": true, "completion": completion, "reward_sent": rewarded})
	}

	goal, err := handler.goalService.SetStatus(user.ID, goalID, status)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update goal")
	}
	rewarded := false
	if goal.Status == models.GoalStatusCompleted {
		rewarded = handler.checkReward(c, user.ID, handler.userToday(c))
	}
	return c.JSON(fiber.Map{"success": true, "goal": goal, "reward_sent": rewarded})
}

func (handler *Handler) ToggleGoal(c *fiber.Ctx) error {
	user := currentUser(c)
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}
	day, err := handler.dayOrToday(c, c.Query("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	completion, err := handler.goalService.ToggleCompletion(user.ID, goalID, day)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to toggle goal")
	}
	rewarded := false
	if completion.Completed {
		rewarded = handler.checkReward(c, user.ID, day)
	}
	return c.JSON(fiber.Map{"success": true, "completion": completion, "reward_sent": rewarded})
}

func (handler *Handler) DeleteGoal(c *fiber.Ctx) error {
	user := currentUser(c)
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}
	if err := handler.goalService.Delete(user.ID, goalID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete goal")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// checkReward runs the reward check for a completion event. Failures are
// logged and never fail the request.
func (handler *Handler) checkReward(c *fiber.Ctx, userID uint, day services.Day) bool {
	if handler.notifier == nil {
		return false
	}
	sent, err := handler.notifier.CheckReward(c.UserContext(), userID, day)
	if err != nil {
		handler.logger.Error().Err(err).Uint("user_id", userID).Str("day", day.String()).Msg("reward check failed")
		return false
	}
	return sent
}

func buildGoalInput(input goalInput) (services.GoalInput, error) {
	result := services.GoalInput{Title: input.Title, Type: input.Type}

	var err error
	if result.TargetDate, err = parseOptionalDay(input.TargetDate); err != nil {
		return services.GoalInput{}, errors.New("invalid target date")
	}
	if result.StartDate, err = parseOptionalDay(input.StartDate); err != nil {
		return services.GoalInput{}, errors.New("invalid start date")
	}
	if result.EndDate, err = parseOptionalDay(input.EndDate); err != nil {
		return services.GoalInput{}, errors.New("invalid end date")
	}
	if result.RecurringDays, err = recurringDaysText(input.RecurringDays); err != nil {
		return services.GoalInput{}, errors.New("invalid recurring days")
	}
	return result, nil
}

func recurringDaysText(raw json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return nil, err
		}
		return &encoded, nil
	}
	text := string(trimmed)
	return &text, nil
}
