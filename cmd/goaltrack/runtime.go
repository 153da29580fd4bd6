package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/terraincognita07/goaltrack/internal/api"
	"github.com/terraincognita07/goaltrack/internal/config"
	"github.com/terraincognita07/goaltrack/internal/db"
	"github.com/terraincognita07/goaltrack/internal/i18n"
	"github.com/terraincognita07/goaltrack/internal/logger"
	"github.com/terraincognita07/goaltrack/internal/mail"
	"github.com/terraincognita07/goaltrack/internal/metrics"
	"github.com/terraincognita07/goaltrack/internal/services"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type appRuntime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	database *gorm.DB
	i18n     *i18n.Manager
	renderer *mail.Renderer
	sender   mail.Sender
	links    *services.DeleteLinkSigner
	registry *prometheus.Registry
	notifier *services.NotificationService
}

// loadRuntime builds every shared dependency. Commands that sign links or
// tokens require a valid secret key.
func loadRuntime(requireSecret bool) (*appRuntime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if requireSecret {
		if err := cfg.ValidateSecretKey(); err != nil {
			return nil, err
		}
	}

	log, err := logger.New("goaltrack", logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}

	database, err := db.Open(db.Options{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.DBPath,
		PostgresDSN: cfg.PostgresDSN,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	i18nManager, err := i18n.NewDefaultManager(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}
	renderer, err := mail.NewRenderer(i18nManager)
	if err != nil {
		return nil, fmt.Errorf("mail renderer init failed: %w", err)
	}
	sender, err := newMailSender(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("mail sender init failed: %w", err)
	}
	mode, err := services.ParseScheduleMode(cfg.ScheduleMode)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repositories := db.NewRepositories(database)
	links := services.NewDeleteLinkSigner(cfg.SecretKey, cfg.BaseURL)
	notifier := services.NewNotificationService(services.NotificationDependencies{
		Users:       repositories.Users,
		Goals:       repositories.Goals,
		Completions: repositories.Completions,
		Sender:      sender,
		Renderer:    renderer,
		Links:       links,
		Recorder:    metrics.NewNotifications(registry),
	}, services.NotificationOptions{
		Mode:             mode,
		ReminderHour:     services.ReminderHourOption(cfg.ReminderHour),
		RewardDailyLimit: cfg.RewardDailyLimit,
	}, log)

	return &appRuntime{
		cfg:      cfg,
		logger:   log,
		database: database,
		i18n:     i18nManager,
		renderer: renderer,
		sender:   sender,
		links:    links,
		registry: registry,
		notifier: notifier,
	}, nil
}

func newMailSender(cfg *config.Config, log zerolog.Logger) (mail.Sender, error) {
	switch cfg.MailTransport {
	case mail.TransportSMTP:
		return mail.NewSMTPSender(mail.SMTPOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	case mail.TransportHTTP:
		return mail.NewHTTPSender(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	case "", mail.TransportLog:
		return mail.NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unsupported mail transport %q", cfg.MailTransport)
	}
}

func (runtime *appRuntime) newHandler() (*api.Handler, error) {
	return api.NewHandler(runtime.database, api.HandlerOptions{
		SecretKey:     runtime.cfg.SecretKey,
		CookieSecure:  runtime.cfg.CookieSecure,
		OperatorToken: runtime.cfg.OperatorToken,
		I18n:          runtime.i18n,
		Links:         runtime.links,
		Notifier:      runtime.notifier,
		Sender:        runtime.sender,
		Renderer:      runtime.renderer,
		Gatherer:      runtime.registry,
		Logger:        runtime.logger,
	})
}

func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Goal Tracker",
		DisableStartupMessage: true,
		ErrorHandler:          jsonErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app
}

func jsonErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// Serve runs the HTTP server and scheduler until SIGINT or SIGTERM. In-flight
// ticks and welcome emails finish before it returns.
func (runtime *appRuntime) Serve(parent context.Context) error {
	handler, err := runtime.newHandler()
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler)

	if parent == nil {
		parent = context.Background()
	}
	sigCtx, stopSignals := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if err := runtime.notifier.Start(sigCtx); err != nil {
		return err
	}

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			runtime.logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	runtime.logger.Info().
		Str("addr", runtime.cfg.ListenAddr()).
		Str("db_driver", runtime.cfg.DBDriver).
		Str("mail_transport", runtime.cfg.MailTransport).
		Msg("goaltrack listening")
	if err := app.Listen(runtime.cfg.ListenAddr()); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}

	handler.Wait()
	return nil
}

func (runtime *appRuntime) Close() {
	sqlDB, err := runtime.database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		runtime.logger.Warn().Err(err).Msg("close database failed")
	}
}
