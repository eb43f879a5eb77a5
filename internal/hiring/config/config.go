// Package config loads the portal configuration from a YAML file. Values
// from the environment (optionally seeded from a .env file) override the
// file, so secrets never have to be committed.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/db"
	"github.com/gartstein/clubhire/internal/hiring/mailer"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/gartstein/clubhire/internal/hiring/summarizer"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`
	// PublicURL is the front-end origin used in emailed links.
	PublicURL string `yaml:"PUBLIC_URL"`

	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	JWTSecret     string        `yaml:"JWT_SECRET"`
	SessionTTL    time.Duration `yaml:"SESSION_TTL"`
	SecureCookies bool          `yaml:"SECURE_COOKIES"`
	AdminUsername string        `yaml:"ADMIN_USERNAME"`
	AdminPassword string        `yaml:"ADMIN_PASSWORD"`

	// Without brokers notifications go through an in-process queue.
	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	KafkaGroup   string   `yaml:"KAFKA_GROUP"`
	QueueSize    int      `yaml:"QUEUE_SIZE"`

	RedisAddr       string        `yaml:"REDIS_ADDR"`
	RedisPassword   string        `yaml:"REDIS_PASSWORD"`
	RateLimit       int           `yaml:"RATE_LIMIT"`
	RateLimitWindow time.Duration `yaml:"RATE_LIMIT_WINDOW"`
	// Forwarding headers are only honoured from these CIDRs or IPs.
	TrustedProxies []string `yaml:"TRUSTED_PROXIES"`

	SMTPHost     string `yaml:"SMTP_HOST"`
	SMTPPort     int    `yaml:"SMTP_PORT"`
	SMTPUsername string `yaml:"SMTP_USERNAME"`
	SMTPPassword string `yaml:"SMTP_PASSWORD"`
	SMTPFrom     string `yaml:"SMTP_FROM"`
	ClubName     string `yaml:"CLUB_NAME"`

	OpenAIAPIKey  string        `yaml:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `yaml:"OPENAI_BASE_URL"`
	OpenAIModel   string        `yaml:"OPENAI_MODEL"`
	OpenAITimeout time.Duration `yaml:"OPENAI_TIMEOUT"`

	// PDF resumes are only summarised with a unipdf license.
	UnidocLicenseKey string `yaml:"UNIDOC_LICENSE_API_KEY"`

	// NotifyStatuses lists the statuses whose entry emails the applicant.
	NotifyStatuses []string `yaml:"NOTIFY_STATUSES"`
}

// Default returns the settings used for anything the file leaves out.
func Default() *Config {
	return &Config{
		GRPCPort:        50051,
		HTTPPort:        8080,
		PublicURL:       "http://localhost:3000",
		DBPort:          5432,
		DBSSLMode:       "disable",
		SessionTTL:      24 * time.Hour,
		Topic:           "notifications",
		KafkaGroup:      "clubhire-mailer",
		QueueSize:       1000,
		RateLimit:       20,
		RateLimitWindow: time.Minute,
		SMTPPort:        587,
		OpenAITimeout:   30 * time.Second,
	}
}

// Load reads path on top of Default, applies a .env file when present and
// then the environment, and validates the result.
func Load(path string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment only
	default:
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"PUBLIC_URL":      &c.PublicURL,
		"DB_HOST":         &c.DBHost,
		"DB_USER":         &c.DBUser,
		"DB_PASSWORD":     &c.DBPassword,
		"DB_NAME":         &c.DBName,
		"DB_SSLMODE":      &c.DBSSLMode,
		"JWT_SECRET":      &c.JWTSecret,
		"ADMIN_USERNAME":  &c.AdminUsername,
		"ADMIN_PASSWORD":  &c.AdminPassword,
		"TOPIC":           &c.Topic,
		"REDIS_ADDR":      &c.RedisAddr,
		"REDIS_PASSWORD":  &c.RedisPassword,
		"SMTP_HOST":       &c.SMTPHost,
		"SMTP_USERNAME":   &c.SMTPUsername,
		"SMTP_PASSWORD":   &c.SMTPPassword,
		"SMTP_FROM":       &c.SMTPFrom,
		"OPENAI_API_KEY":  &c.OpenAIAPIKey,
		"OPENAI_BASE_URL": &c.OpenAIBaseURL,
		"OPENAI_MODEL":    &c.OpenAIModel,

		"UNIDOC_LICENSE_API_KEY": &c.UnidocLicenseKey,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GRPC_PORT":  &c.GRPCPort,
		"HTTP_PORT":  &c.HTTPPort,
		"DB_PORT":    &c.DBPort,
		"SMTP_PORT":  &c.SMTPPort,
		"RATE_LIMIT": &c.RateLimit,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	if v, ok := lookup("SECURE_COOKIES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SECURE_COOKIES: %w", err)
		}
		c.SecureCookies = b
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = splitList(v)
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok {
		c.TrustedProxies = splitList(v)
	}
	if v, ok := lookup("NOTIFY_STATUSES"); ok {
		c.NotifyStatuses = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every setting the portal cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		errs = append(errs, errors.New("HTTP_PORT and GRPC_PORT must be positive"))
	}
	if c.HTTPPort == c.GRPCPort {
		errs = append(errs, errors.New("HTTP_PORT and GRPC_PORT must differ"))
	}
	if c.DBHost == "" || c.DBName == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	if c.RateLimit <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT and RATE_LIMIT_WINDOW must be positive"))
	}
	if _, err := c.Statuses(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Statuses parses NotifyStatuses. An empty list yields nil so the default
// set applies.
func (c *Config) Statuses() ([]models.Status, error) {
	if len(c.NotifyStatuses) == 0 {
		return nil, nil
	}
	out := make([]models.Status, 0, len(c.NotifyStatuses))
	for _, raw := range c.NotifyStatuses {
		s := models.Status(strings.TrimSpace(raw))
		if !s.Valid() {
			return nil, fmt.Errorf("NOTIFY_STATUSES: unknown status %q", raw)
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *Config) Database() *db.Config {
	return &db.Config{
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		SSLMode:  c.DBSSLMode,
	}
}

func (c *Config) Mailer() mailer.Config {
	return mailer.Config{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
		ClubName: c.ClubName,
	}
}

// Summarizer returns the model endpoint settings, or false when no API key
// is configured.
func (c *Config) Summarizer() (summarizer.Config, bool) {
	return summarizer.Config{
		APIKey:  c.OpenAIAPIKey,
		BaseURL: c.OpenAIBaseURL,
		Model:   c.OpenAIModel,
		Timeout: c.OpenAITimeout,
	}, c.OpenAIAPIKey != ""
}
