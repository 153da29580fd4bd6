package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/goaltrack/internal/models"
)

var (
	errNoSession      = errors.New("no session cookie")
	errInvalidSession = errors.New("invalid session token")
)

// Sessions are stateless HS256 tokens in an HttpOnly cookie. A remembered
// login gets a persistent cookie; otherwise the cookie dies with the browser.
func (handler *Handler) setAuthCookie(c *fiber.Ctx, user *models.User, rememberMe bool) error {
	ttl := defaultAuthTokenTTL
	if rememberMe {
		ttl = rememberAuthTokenTTL
	}
	token, expiresAt, err := handler.issueSessionToken(user.ID, ttl)
	if err != nil {
		return err
	}

	cookie := handler.sessionCookie(token)
	if rememberMe {
		cookie.Expires = expiresAt
	}
	c.Cookie(cookie)
	return nil
}

func (handler *Handler) clearAuthCookie(c *fiber.Ctx) {
	cookie := handler.sessionCookie("")
	cookie.Expires = handler.now().Add(-time.Hour)
	c.Cookie(cookie)
}

func (handler *Handler) sessionCookie(value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (handler *Handler) issueSessionToken(userID uint, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("session ttl must be positive")
	}
	now := handler.now()
	expiresAt := now.Add(ttl)
	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (handler *Handler) parseSessionToken(raw string) (uint, error) {
	claims := &authClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return handler.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(handler.now),
	)
	if err != nil || claims.UserID == 0 {
		return 0, errInvalidSession
	}
	return claims.UserID, nil
}

// authenticateRequest resolves the session cookie to a live user. Tokens of
// deleted accounts fail here even when their signature is still valid.
func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	raw := strings.TrimSpace(c.Cookies(authCookieName))
	if raw == "" {
		return nil, errNoSession
	}
	userID, err := handler.parseSessionToken(raw)
	if err != nil {
		return nil, err
	}
	user, err := handler.authService.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
