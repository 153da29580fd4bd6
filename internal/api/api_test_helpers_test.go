package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/goaltrack/internal/db"
	"github.com/terraincognita07/goaltrack/internal/i18n"
	"github.com/terraincognita07/goaltrack/internal/mail"
	"github.com/terraincognita07/goaltrack/internal/metrics"
	"github.com/terraincognita07/goaltrack/internal/services"
)

const (
	testSecretKey     = "0123456789abcdef0123456789abcdef"
	testOperatorToken = "operator-token"
	testBaseURL       = "https://goals.example.com"
	testPassword      = "StrongPass1"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type capturedMail struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (sender *capturedMail) Send(_ context.Context, message mail.Message) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.messages = append(sender.messages, message)
	return nil
}

func (sender *capturedMail) Messages() []mail.Message {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	result := make([]mail.Message, len(sender.messages))
	copy(result, sender.messages)
	return result
}

type testEnv struct {
	app          *fiber.App
	handler      *Handler
	repositories *db.Repositories
	sender       *capturedMail
	links        *services.DeleteLinkSigner
}

type testEnvOptions struct {
	operatorToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, testEnvOptions{operatorToken: testOperatorToken})
}

func newTestEnvWith(t *testing.T, options testEnvOptions) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "goaltrack-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewDefaultManager("en")
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	renderer, err := mail.NewRenderer(i18nManager)
	if err != nil {
		t.Fatalf("init renderer: %v", err)
	}

	registry := prometheus.NewRegistry()
	repositories := db.NewRepositories(database)
	sender := &capturedMail{}
	links := services.NewDeleteLinkSigner(testSecretKey, testBaseURL)
	clock := func() time.Time { return testNow }

	notifier := services.NewNotificationService(services.NotificationDependencies{
		Users:       repositories.Users,
		Goals:       repositories.Goals,
		Completions: repositories.Completions,
		Sender:      sender,
		Renderer:    renderer,
		Links:       links,
		Recorder:    metrics.NewNotifications(registry),
	}, services.NotificationOptions{}, zerolog.Nop())
	notifier.SetClock(clock)

	handler, err := NewHandler(database, HandlerOptions{
		SecretKey:     testSecretKey,
		OperatorToken: options.operatorToken,
		I18n:          i18nManager,
		Links:         links,
		Notifier:      notifier,
		Sender:        sender,
		Renderer:      renderer,
		Gatherer:      registry,
		Logger:        zerolog.Nop(),
		Now:           clock,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	return &testEnv{app: app, handler: handler, repositories: repositories, sender: sender, links: links}
}

func (env *testEnv) do(t *testing.T, method string, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

// registerAndLogin creates an account and returns the session cookie header.
func (env *testEnv) registerAndLogin(t *testing.T, username string) (uint, string) {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, "")
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}
	payload := struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}{}
	decodeJSON(t, response.Body, &payload)

	return payload.User.ID, env.login(t, username, testPassword)
}

func (env *testEnv) login(t *testing.T, username string, password string) string {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": username,
		"password": password,
	}, "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}
	value := responseCookieValue(response.Cookies(), authCookieName)
	if value == "" {
		t.Fatal("auth cookie is missing in login response")
	}
	return authCookieName + "=" + value
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(raw), err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, body, &payload)
	message, _ := payload["error"].(string)
	return message
}
