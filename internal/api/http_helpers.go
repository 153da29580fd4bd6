package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/services"
)

var errInvalidID = errors.New("invalid id")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	return parseID(c.Params(name))
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, errInvalidID
	}
	return uint(value), nil
}

// parseOptionalDay returns nil for an empty value.
func parseOptionalDay(raw string) (*services.Day, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	day, err := services.ParseDay(raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// userToday is the current calendar day in the user's timezone.
func (handler *Handler) userToday(c *fiber.Ctx) services.Day {
	return services.DayIn(handler.now(), currentUser(c).Location())
}

// dayOrToday parses raw, defaulting to the user's today when it is empty.
func (handler *Handler) dayOrToday(c *fiber.Ctx, raw string) (services.Day, error) {
	day, err := parseOptionalDay(raw)
	if err != nil {
		return services.Day{}, err
	}
	if day == nil {
		return handler.userToday(c), nil
	}
	return *day, nil
}

type serviceErrorMapping struct {
	target  error
	status  int
	message string
}

var serviceErrorMappings = []serviceErrorMapping{
	{services.ErrGoalNotFound, fiber.StatusNotFound, "goal not found"},
	{services.ErrNoteNotFound, fiber.StatusNotFound, "note not found"},
	{services.ErrNoteGoalNotFound, fiber.StatusNotFound, "goal not found"},
	{services.ErrUserNotFound, fiber.StatusNotFound, "user not found"},
	{services.ErrUserAlreadyExists, fiber.StatusConflict, "user with this username or email already exists"},
	{services.ErrSettingsEmailTaken, fiber.StatusConflict, "email already in use"},
	{services.ErrRegistrationFieldsRequired, fiber.StatusBadRequest, "username, email and password are required"},
	{services.ErrAuthUsernameInvalid, fiber.StatusBadRequest, "invalid username"},
	{services.ErrAuthEmailInvalid, fiber.StatusBadRequest, "invalid email"},
	{services.ErrWeakPassword, fiber.StatusBadRequest, "weak password"},
	{services.ErrPasswordTooLong, fiber.StatusBadRequest, "password too long"},
	{services.ErrTimezoneInvalid, fiber.StatusBadRequest, "invalid timezone"},
	{services.ErrLanguageUnsupported, fiber.StatusBadRequest, "unsupported language"},
	{services.ErrGoalTitleRequired, fiber.StatusBadRequest, "title is required"},
	{services.ErrGoalTitleTooLong, fiber.StatusBadRequest, "title too long"},
	{services.ErrGoalTypeInvalid, fiber.StatusBadRequest, "invalid goal type"},
	{services.ErrGoalStatusInvalid, fiber.StatusBadRequest, "invalid goal status"},
	{services.ErrGoalScheduleConflict, fiber.StatusBadRequest, "target date cannot be combined with start, end or recurring days"},
	{services.ErrGoalWindowInvalid, fiber.StatusBadRequest, "end date is before start date"},
	{services.ErrGoalRecurrenceInvalid, fiber.StatusBadRequest, "invalid recurring days"},
	{services.ErrNoteContentRequired, fiber.StatusBadRequest, "content is required"},
	{services.ErrSettingsPasswordChangeInvalidInput, fiber.StatusBadRequest, "invalid input"},
	{services.ErrSettingsPasswordMismatch, fiber.StatusBadRequest, "password mismatch"},
	{services.ErrSettingsInvalidCurrentPassword, fiber.StatusUnauthorized, "invalid current password"},
	{services.ErrSettingsNewPasswordMustDiffer, fiber.StatusBadRequest, "new password must differ"},
	{services.ErrSettingsWeakPassword, fiber.StatusBadRequest, "weak password"},
}

// respondServiceError maps a service sentinel to its status code; anything
// unknown is logged and reported as a 500 with fallback as the message.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.target) {
			return apiError(c, mapping.status, mapping.message)
		}
	}
	handler.logger.Error().Stack().Err(err).Str("path", c.Path()).Msg(fallback)
	return apiError(c, fiber.StatusInternalServerError, fallback)
}
