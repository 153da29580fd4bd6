package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/models"
	"github.com/terraincognita07/goaltrack/internal/services"
)

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := handler.settingsService.Profile(currentUser(c).ID)
	if err != nil {
		return handler.respondServiceError(c, err, "failed to load profile")
	}
	return c.JSON(newProfileView(user))
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	input := profileInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.settingsService.UpdateProfile(currentUser(c).ID, services.ProfileUpdate{
		Email:    input.Email,
		Timezone: input.Timezone,
		Language: input.Language,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update profile")
	}
	return c.JSON(newProfileView(user))
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user := currentUser(c)
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.settingsService.ChangePassword(user.ID, user.PasswordHash, services.PasswordChange{
		Current: input.CurrentPassword,
		New:     input.NewPassword,
		Confirm: input.ConfirmPassword,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to update password")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	if err := handler.settingsService.DeleteAccount(currentUser(c).ID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete account")
	}
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"message": "account deleted"})
}

// DeleteAccountDirect serves the signed one-click link from notification
// emails. A bad signature never touches the database.
func (handler *Handler) DeleteAccountDirect(c *fiber.Ctx) error {
	rawID := c.Query("id")
	signature := c.Query("sig")
	if rawID == "" || signature == "" {
		return apiError(c, fiber.StatusBadRequest, "invalid request")
	}
	userID, err := parseID(rawID)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request")
	}

	if err := handler.links.Verify(userID, signature); err != nil {
		return apiError(c, fiber.StatusUnauthorized, "invalid signature")
	}

	if _, err := handler.settingsService.Profile(userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return apiError(c, fiber.StatusNotFound, "user not found")
		}
		return handler.respondServiceError(c, err, "failed to delete account")
	}
	if err := handler.settingsService.DeleteAccount(userID); err != nil {
		return handler.respondServiceError(c, err, "failed to delete account")
	}

	handler.logger.Info().Uint("user_id", userID).Msg("account deleted from email link")
	handler.clearAuthCookie(c)
	return c.Redirect(handler.links.DeletedURL(), fiber.StatusSeeOther)
}

func newProfileView(user models.User) profileView {
	return profileView{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Timezone: user.Location().String(),
		Language: user.Language,
	}
}
