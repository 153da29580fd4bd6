package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. GOALTRACK_PORT.
const Prefix = "GOALTRACK"

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const minSecretKeyLength = 32

var (
	ErrSecretKeyMissing     = errors.New("SECRET_KEY is required")
	ErrSecretKeyPlaceholder = errors.New("SECRET_KEY uses an insecure placeholder")
	ErrSecretKeyTooShort    = errors.New("SECRET_KEY must be at least 32 characters")
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":      {},
	"changeme":    {},
	"development": {},
}

type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath      string `envconfig:"DB_PATH" default:"data/goaltrack.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	SecretKey    string `envconfig:"SECRET_KEY"`
	BaseURL      string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	CookieSecure bool   `envconfig:"COOKIE_SECURE" default:"false"`

	ScheduleMode     string `envconfig:"SCHEDULE_MODE" default:"per-user-local-hour"`
	ReminderHour     int    `envconfig:"REMINDER_HOUR" default:"22"`
	RewardDailyLimit int    `envconfig:"REWARD_DAILY_LIMIT" default:"2"`
	// OperatorToken guards the manual notification trigger; empty disables it.
	OperatorToken string `envconfig:"OPERATOR_TOKEN"`

	MailTransport string `envconfig:"MAIL_TRANSPORT" default:"log"`
	MailFrom      string `envconfig:"MAIL_FROM" default:"Goal Tracker <noreply@localhost>"`
	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername  string `envconfig:"SMTP_USERNAME"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	MailAPIURL    string `envconfig:"MAIL_API_URL" default:"https://api.resend.com"`
	MailAPIKey    string `envconfig:"MAIL_API_KEY"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile         string `envconfig:"LOG_FILE"`
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveDefaults normalizes enum-like values and trims the base URL.
func (c *Config) ResolveDefaults() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver == "" {
		c.DBDriver = DriverSQLite
	}
	c.MailTransport = strings.ToLower(strings.TrimSpace(c.MailTransport))
	if c.MailTransport == "" {
		c.MailTransport = "log"
	}
	c.ScheduleMode = strings.ToLower(strings.TrimSpace(c.ScheduleMode))
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.OperatorToken = strings.TrimSpace(c.OperatorToken)
	return nil
}

// Validate checks settings that need no secret; ValidateSecretKey covers the
// secret separately so commands that never sign anything can skip it.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.MailTransport {
	case "log":
	case "smtp":
		if strings.TrimSpace(c.SMTPHost) == "" {
			return errors.New("SMTP_HOST is required for the smtp mail transport")
		}
	case "http":
		if strings.TrimSpace(c.MailAPIKey) == "" {
			return errors.New("MAIL_API_KEY is required for the http mail transport")
		}
	default:
		return fmt.Errorf("unsupported MAIL_TRANSPORT: %s", c.MailTransport)
	}

	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("REMINDER_HOUR must be between 0 and 23, got %d", c.ReminderHour)
	}
	if c.RewardDailyLimit < 0 {
		return fmt.Errorf("REWARD_DAILY_LIMIT must not be negative, got %d", c.RewardDailyLimit)
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid BASE_URL: %w", err)
	}
	return nil
}

func (c *Config) ValidateSecretKey() error {
	return validateSecretKey(c.SecretKey)
}

func validateSecretKey(raw string) error {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return ErrSecretKeyMissing
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return ErrSecretKeyPlaceholder
	}
	if len(secret) < minSecretKeyLength {
		return ErrSecretKeyTooShort
	}
	return nil
}

func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.PostgresDSN
	}
	return c.DBPath
}

func (c *Config) ListenAddr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
