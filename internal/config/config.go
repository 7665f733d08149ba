// Package config loads gateway configuration from an optional YAML file
// with environment-variable overrides. A .env / .env.local file is honored
// via godotenv without overriding the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
)

// SMTPConfig carries the email transport parameters. An empty Host
// disables email silently.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Unsafe   bool   `yaml:"unsafe"`
}

// Config is the full gateway configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port int `yaml:"port"`

	// Username and Password gate every route (single credential pair).
	// Both are required; startup fails without them.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// StoragePath is the artifact store root. Empty disables storage
	// entirely; rendering then falls back to direct delivery.
	StoragePath string `yaml:"storage_path"`

	// TemplatesPath backs the template catalog.
	TemplatesPath string `yaml:"templates_path"`

	// SpoolPath holds temporary multipart uploads.
	SpoolPath string `yaml:"spool_path"`

	// HistoryDB is the SQLite render history path. Empty disables history.
	HistoryDB string `yaml:"history_db"`

	// NATSURL enables render event publishing when set.
	NATSURL string `yaml:"nats_url"`

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// RenderTimeout bounds a single engine invocation.
	RenderTimeout time.Duration `yaml:"render_timeout"`

	// CleanupInterval is the spool janitor period; SpoolMaxAge is how old
	// an orphaned upload must be before it is swept.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	SpoolMaxAge     time.Duration `yaml:"spool_max_age"`

	SMTP SMTPConfig `yaml:"smtp"`
}

// Defaults returns the baseline configuration.
func Defaults() *Config {
	return &Config{
		Port:            3030,
		TemplatesPath:   ".",
		SpoolPath:       os.TempDir(),
		HistoryDB:       "rendergate.db",
		MetricsEnabled:  true,
		RenderTimeout:   30 * time.Second,
		CleanupInterval: 10 * time.Minute,
		SpoolMaxAge:     time.Hour,
	}
}

// Load builds the configuration: defaults, then the YAML file (when path
// is non-empty and present), then environment overrides. Validation runs
// last; missing credentials are fatal.
func Load(path string) (*Config, error) {
	// Best effort; absence of a .env file is the common case.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, gerrors.Wrap(err, gerrors.CategoryConfig, gerrors.SeverityFatal, "parse configuration file")
			}
		} else if !os.IsNotExist(err) {
			return nil, gerrors.Wrap(err, gerrors.CategoryConfig, gerrors.SeverityFatal, "read configuration file")
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Username == "" {
		return gerrors.ConfigRequired("USERNAME")
	}
	if c.Password == "" {
		return gerrors.ConfigRequired("PASSWORD")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return gerrors.New(gerrors.CategoryConfig, gerrors.SeverityFatal, fmt.Sprintf("invalid port %d", c.Port))
	}
	return nil
}

// StorageEnabled reports whether an artifact store is configured.
func (c *Config) StorageEnabled() bool {
	return c.StoragePath != ""
}

// EmailEnabled reports whether SMTP delivery is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTP.Host != ""
}

func applyEnv(cfg *Config) {
	setString(&cfg.Username, "USERNAME")
	setString(&cfg.Password, "PASSWORD")
	setString(&cfg.StoragePath, "STORAGE_PATH")
	setString(&cfg.TemplatesPath, "TEMPLATES_PATH")
	setString(&cfg.SpoolPath, "SPOOL_PATH")
	setString(&cfg.NATSURL, "NATS_URL")
	setInt(&cfg.Port, "PORT")
	setDuration(&cfg.RenderTimeout, "RENDER_TIMEOUT")
	setDuration(&cfg.CleanupInterval, "CLEANUP_INTERVAL")
	setDuration(&cfg.SpoolMaxAge, "SPOOL_MAX_AGE")
	setBool(&cfg.MetricsEnabled, "METRICS_ENABLED")

	// HISTORY_DB accepts the empty string to disable history, so presence
	// matters, not just non-emptiness.
	if v, ok := os.LookupEnv("HISTORY_DB"); ok {
		cfg.HistoryDB = v
	}

	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.Username, "SMTP_USER")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setBool(&cfg.SMTP.Unsafe, "SMTP_UNSAFE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
