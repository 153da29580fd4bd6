package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func (env *testEnv) runNotifications(t *testing.T, path string, token string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, nil)
	request.Header.Set("Accept", "application/json")
	if token != "" {
		request.Header.Set(operatorTokenHeader, token)
	}
	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("run notifications: %v", err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func TestRunNotificationsRequiresOperatorToken(t *testing.T) {
	hidden := newTestEnvWith(t, testEnvOptions{})
	response := hidden.runNotifications(t, "/api/admin/notifications/run", testOperatorToken)
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 without configured token, got %d", response.StatusCode)
	}

	env := newTestEnv(t)
	response = env.runNotifications(t, "/api/admin/notifications/run", "wrong-token")
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for wrong token, got %d", response.StatusCode)
	}
	response = env.runNotifications(t, "/api/admin/notifications/run", "")
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", response.StatusCode)
	}
}

func TestRunNotificationsForcedSendsReminders(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.registerAndLogin(t, "maya")
	createGoal(t, env, cookie, map[string]any{"title": "Read"})
	env.handler.Wait()
	before := len(env.sender.Messages())

	// 12:00 UTC is outside the reminder hour.
	response := env.runNotifications(t, "/api/admin/notifications/run", testOperatorToken)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", response.StatusCode)
	}
	report := struct {
		RunID     string `json:"run_id"`
		Users     int    `json:"users"`
		Deferred  int    `json:"deferred"`
		Evaluated int    `json:"evaluated"`
		Reminded  int    `json:"reminded"`
	}{}
	decodeJSON(t, response.Body, &report)
	if report.RunID == "" || report.Reminded != 0 || report.Deferred != 1 {
		t.Fatalf("expected deferred user outside reminder hour, got %#v", report)
	}

	response = env.runNotifications(t, "/api/admin/notifications/run?force=true", testOperatorToken)
	decodeJSON(t, response.Body, &report)
	if report.Evaluated != 1 || report.Reminded != 1 {
		t.Fatalf("expected forced reminder, got %#v", report)
	}

	messages := env.sender.Messages()
	if len(messages) != before+1 {
		t.Fatalf("expected one reminder email, got %d new messages", len(messages)-before)
	}
	reminder := messages[len(messages)-1]
	if reminder.Subject != "Reminder: You have incomplete goals for today" || reminder.To != "maya@example.com" {
		t.Fatalf("unexpected reminder %q to %q", reminder.Subject, reminder.To)
	}
	if !strings.Contains(reminder.HTML, "/api/user/delete-direct?") {
		t.Fatal("expected reminder to carry the signed delete link")
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	response := env.do(t, http.MethodGet, "/healthz", nil, "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected health status 200, got %d", response.StatusCode)
	}
	payload := map[string]string{}
	decodeJSON(t, response.Body, &payload)
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health payload %#v", payload)
	}

	env.runNotifications(t, "/api/admin/notifications/run?force=true", testOperatorToken)

	response = env.do(t, http.MethodGet, "/metrics", nil, "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics status 200, got %d", response.StatusCode)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "goaltrack_notifications_ticks_total") {
		t.Fatalf("expected tick counter in metrics output, got %s", body)
	}

	response = env.do(t, http.MethodGet, "/api/unknown", nil, "")
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown route, got %d", response.StatusCode)
	}
}

func TestHealthReportsUnavailableDatabase(t *testing.T) {
	env := newTestEnv(t)

	sqlDB, err := env.handler.database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close sql db: %v", err)
	}

	response := env.do(t, http.MethodGet, "/healthz", nil, "")
	if response.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected health status 503, got %d", response.StatusCode)
	}
}
