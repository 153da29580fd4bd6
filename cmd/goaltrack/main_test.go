package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/goaltrack/internal/config"
	"github.com/terraincognita07/goaltrack/internal/mail"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRuntimeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOALTRACK_DB_PATH", filepath.Join(t.TempDir(), "goaltrack.db"))
	t.Setenv("GOALTRACK_SECRET_KEY", testSecret)
	t.Setenv("GOALTRACK_MAIL_TRANSPORT", "log")
	t.Setenv("GOALTRACK_LOG_LEVEL", "error")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "notify", "reset-password"} {
		command, _, err := root.Find([]string{name})
		if err != nil || command.Name() != name {
			t.Fatalf("expected subcommand %q, got %v (%v)", name, command, err)
		}
	}
}

func TestLoadRuntimeRequiresSecretKey(t *testing.T) {
	setRuntimeEnv(t)
	t.Setenv("GOALTRACK_SECRET_KEY", "change_me_in_production")

	if _, err := loadRuntime(true); !errors.Is(err, config.ErrSecretKeyPlaceholder) {
		t.Fatalf("expected placeholder secret error, got %v", err)
	}

	runtime, err := loadRuntime(false)
	if err != nil {
		t.Fatalf("expected runtime without secret check, got %v", err)
	}
	runtime.Close()
}

func TestLoadRuntimePassesReminderHour(t *testing.T) {
	for _, tc := range []struct {
		env  string
		want int
	}{
		{env: "", want: 22},
		{env: "0", want: 0},
		{env: "7", want: 7},
	} {
		setRuntimeEnv(t)
		if tc.env != "" {
			t.Setenv("GOALTRACK_REMINDER_HOUR", tc.env)
		}

		runtime, err := loadRuntime(true)
		if err != nil {
			t.Fatalf("load runtime: %v", err)
		}
		hour := runtime.notifier.Options().ReminderHour
		runtime.Close()
		if hour == nil || *hour != tc.want {
			t.Fatalf("REMINDER_HOUR=%q: expected notifier hour %d, got %v", tc.env, tc.want, hour)
		}
	}
}

func TestNewMailSenderSelectsTransport(t *testing.T) {
	cfg := &config.Config{MailTransport: "log"}
	sender, err := newMailSender(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("log sender: %v", err)
	}
	if _, ok := sender.(*mail.LogSender); !ok {
		t.Fatalf("expected *mail.LogSender, got %T", sender)
	}

	cfg = &config.Config{MailTransport: "http", MailAPIURL: "https://api.example.com", MailAPIKey: "key", MailFrom: "noreply@example.com"}
	sender, err = newMailSender(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("http sender: %v", err)
	}
	if _, ok := sender.(*mail.HTTPSender); !ok {
		t.Fatalf("expected *mail.HTTPSender, got %T", sender)
	}

	if _, err := newMailSender(&config.Config{MailTransport: "pigeon"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}

func TestServerAppServesHealthAndMetrics(t *testing.T) {
	setRuntimeEnv(t)

	runtime, err := loadRuntime(true)
	if err != nil {
		t.Fatalf("load runtime: %v", err)
	}
	defer runtime.Close()

	handler, err := runtime.newHandler()
	if err != nil {
		t.Fatalf("handler init: %v", err)
	}
	app := newApp(handler)

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("healthz request: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz status 200, got %d", response.StatusCode)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("expected go runtime collectors in metrics output")
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	if err != nil {
		t.Fatalf("missing route request: %v", err)
	}
	if response.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", response.StatusCode)
	}
}

func TestJSONErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: jsonErrorHandler})
	app.Get("/teapot", func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(*fiber.Ctx) error {
		return errors.New("database exploded")
	})

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil), -1)
	if err != nil {
		t.Fatalf("teapot request: %v", err)
	}
	body, _ := io.ReadAll(response.Body)
	if response.StatusCode != fiber.StatusTeapot || !bytes.Contains(body, []byte(`"short and stout"`)) {
		t.Fatalf("unexpected teapot response %d %s", response.StatusCode, body)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	if err != nil {
		t.Fatalf("boom request: %v", err)
	}
	body, _ = io.ReadAll(response.Body)
	if response.StatusCode != fiber.StatusInternalServerError || bytes.Contains(body, []byte("exploded")) {
		t.Fatalf("expected internal details to stay hidden, got %d %s", response.StatusCode, body)
	}
}

func TestNotifyCommandPrintsReport(t *testing.T) {
	setRuntimeEnv(t)

	root := newRootCommand()
	output := &bytes.Buffer{}
	root.SetOut(output)
	root.SetArgs([]string{"notify", "--force"})
	if err := root.Execute(); err != nil {
		t.Fatalf("notify command: %v", err)
	}
	if !strings.Contains(output.String(), `"run_id"`) {
		t.Fatalf("expected report json, got %q", output.String())
	}
}
