package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/goaltrack/internal/db"
	"github.com/terraincognita07/goaltrack/internal/services"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, options HandlerOptions) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if strings.TrimSpace(options.SecretKey) == "" {
		return nil, errors.New("secret key is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if options.Links == nil {
		return nil, errors.New("delete link signer is required")
	}

	handler := &Handler{
		database:      database,
		secretKey:     []byte(options.SecretKey),
		cookieSecure:  options.CookieSecure,
		operatorToken: strings.TrimSpace(options.OperatorToken),
		i18n:          options.I18n,
		logger:        options.Logger.With().Str("component", "api").Logger(),
		now:           options.Now,
		notifier:      options.Notifier,
		links:         options.Links,
		sender:        options.Sender,
		renderer:      options.Renderer,
		gatherer:      options.Gatherer,
		loginLimiter:  newAttemptLimiter(),
	}
	if handler.now == nil {
		handler.now = time.Now
	}
	return handler.withDependencies(db.NewRepositories(database)), nil
}

func (handler *Handler) withDependencies(repositories *db.Repositories) *Handler {
	handler.authService = services.NewAuthService(repositories.Users, handler.i18n)
	handler.goalService = services.NewGoalService(repositories.Goals, repositories.Completions)
	handler.noteService = services.NewNoteService(repositories.Notes, repositories.Goals)
	handler.settingsService = services.NewSettingsService(repositories.Users, handler.i18n)
	return handler
}

// Wait blocks until fire-and-forget work such as welcome emails has finished.
func (handler *Handler) Wait() {
	handler.background.Wait()
}
