package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/goaltrack/internal/mail"
	"github.com/terraincognita07/goaltrack/internal/models"
	"github.com/terraincognita07/goaltrack/internal/services"
)

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := registerInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if input.Language == "" {
		input.Language = handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	}

	user, err := handler.authService.Register(services.RegistrationInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Timezone: input.Timezone,
		Language: input.Language,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "failed to create account")
	}

	handler.sendWelcome(user)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user created",
		"user":    fiber.Map{"id": user.ID, "username": user.Username},
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	limiterKey := loginLimiterKey(c, input.Username)
	now := handler.now()
	if handler.loginLimiter.blocked(limiterKey, now) {
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Authenticate(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthCredentialsInvalid) {
			handler.loginLimiter.recordFailure(limiterKey, now)
			return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return handler.respondServiceError(c, err, "failed to sign in")
	}
	handler.loginLimiter.reset(limiterKey)

	if err := handler.setAuthCookie(c, &user, input.RememberMe); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{
		"ok":   true,
		"user": fiber.Map{"id": user.ID, "username": user.Username},
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

// sendWelcome mails the new user in the background. Failures never affect
// the registration response.
func (handler *Handler) sendWelcome(user models.User) {
	if handler.sender == nil || handler.renderer == nil || !user.HasEmail() {
		return
	}

	message, err := handler.renderer.Welcome(user.EmailAddress(), mail.WelcomeContent{
		Username: user.Username,
		Language: user.Language,
		LoginURL: handler.links.LoginURL(),
	})
	if err != nil {
		handler.logger.Error().Err(err).Uint("user_id", user.ID).Msg("render welcome email failed")
		return
	}

	handler.background.Add(1)
	go func() {
		defer handler.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), welcomeSendTimeout)
		defer cancel()
		if err := handler.sender.Send(ctx, message); err != nil {
			handler.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("welcome email failed")
		}
	}()
}
