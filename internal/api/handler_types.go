package api

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/goaltrack/internal/i18n"
	"github.com/terraincognita07/goaltrack/internal/mail"
	"github.com/terraincognita07/goaltrack/internal/services"
	"gorm.io/gorm"
)

const (
	authCookieName = "goaltrack_auth"
	contextUserKey = "current_user"

	operatorTokenHeader = "X-Operator-Token"

	defaultAuthTokenTTL  = 7 * 24 * time.Hour
	rememberAuthTokenTTL = 30 * 24 * time.Hour

	loginAttemptLimit  = 8
	loginAttemptWindow = 15 * time.Minute

	welcomeSendTimeout = 30 * time.Second
	healthPingTimeout  = 2 * time.Second
)

type Handler struct {
	database      *gorm.DB
	secretKey     []byte
	cookieSecure  bool
	operatorToken string
	i18n          *i18n.Manager
	logger        zerolog.Logger
	now           func() time.Time

	authService     *services.AuthService
	goalService     *services.GoalService
	noteService     *services.NoteService
	settingsService *services.SettingsService
	notifier        *services.NotificationService
	links           *services.DeleteLinkSigner

	sender   mail.Sender
	renderer *mail.Renderer
	gatherer prometheus.Gatherer

	loginLimiter *attemptLimiter
	background   sync.WaitGroup
}

// HandlerOptions wires the collaborators a Handler cannot build from the
// database alone. Notifier, Sender, Renderer and Gatherer are optional.
type HandlerOptions struct {
	SecretKey     string
	CookieSecure  bool
	OperatorToken string
	I18n          *i18n.Manager
	Links         *services.DeleteLinkSigner
	Notifier      *services.NotificationService
	Sender        mail.Sender
	Renderer      *mail.Renderer
	Gatherer      prometheus.Gatherer
	Logger        zerolog.Logger
	Now           func() time.Time
}

type authClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}
