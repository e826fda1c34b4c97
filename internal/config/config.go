// Package config provides configuration loading for the mail sending service:
// defaults, then an optional YAML file, then environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in the providers list.
const (
	ProviderSendGrid = "sendgrid"
	ProviderMailgun  = "mailgun"
	ProviderSES      = "ses"
	ProviderGraph    = "graph"
	ProviderResend   = "resend"
	ProviderStdout   = "stdout"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// defaultMaxBodyBytes is 1 MB.
const defaultMaxBodyBytes = 1 << 20

var knownProviders = map[string]bool{
	ProviderSendGrid: true,
	ProviderMailgun:  true,
	ProviderSES:      true,
	ProviderGraph:    true,
	ProviderResend:   true,
	ProviderStdout:   true,
}

// Config holds the complete application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// Providers lists backends in failover order.
	Providers []string `yaml:"providers"`

	SendGrid SendGridConfig `yaml:"sendgrid"`
	Mailgun  MailgunConfig  `yaml:"mailgun"`
	SES      SESConfig      `yaml:"ses"`
	Graph    GraphConfig    `yaml:"graph"`
	Resend   ResendConfig   `yaml:"resend"`

	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Listen          string   `yaml:"listen"`
	StaticFilesPath string   `yaml:"static_files_path"`
	APIDocsFile     string   `yaml:"api_docs_file"`
	CORSOrigins     []string `yaml:"cors_origins"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
}

// SendGridConfig holds SendGrid credentials.
type SendGridConfig struct {
	APIKey   string        `yaml:"api_key"`
	FromMail string        `yaml:"from_mail"`
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MailgunConfig holds Mailgun credentials. APIURL is the full messages endpoint.
type MailgunConfig struct {
	APIKey   string        `yaml:"api_key"`
	FromMail string        `yaml:"from_mail"`
	APIURL   string        `yaml:"api_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SESConfig holds AWS SES configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	FromMail        string `yaml:"from_mail"`
}

// GraphConfig holds Microsoft Graph API configuration.
type GraphConfig struct {
	TenantID     string        `yaml:"tenant_id"`
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	FromMail     string        `yaml:"from_mail"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ResendConfig holds Resend credentials.
type ResendConfig struct {
	APIKey   string `yaml:"api_key"`
	FromMail string `yaml:"from_mail"`
}

// StoreConfig selects where the current provider index is kept.
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redis_url"`
	Key      string `yaml:"key"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	cfg.normalize()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()
	cfg.normalize()

	return cfg, nil
}

// Validate checks the provider list and store selection. Per-provider
// credentials are not checked; a misconfigured provider simply fails its
// sends and the dispatcher moves on.
func (c *Config) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if !knownProviders[p] {
			errs = append(errs, fmt.Errorf("unknown provider %q", p))
			continue
		}
		if seen[p] {
			errs = append(errs, fmt.Errorf("provider %q listed more than once", p))
		}
		seen[p] = true
	}

	switch c.Store.Backend {
	case "", StoreMemory:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("store backend redis requires a redis URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	return errors.Join(errs...)
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Server.Listen = ":8080"
	c.Server.StaticFilesPath = "./static"
	c.Server.APIDocsFile = "api.html"
	c.Server.MaxBodyBytes = defaultMaxBodyBytes
	c.Store.Backend = StoreMemory
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	setString(&c.Server.Listen, "MSS_LISTEN")
	setString(&c.Server.StaticFilesPath, "MSS_STATIC_FILES_PATH")
	setString(&c.Server.APIDocsFile, "MSS_API_DOCS_FILE")
	if v := os.Getenv("MSS_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("MSS_MAX_BODY_BYTES"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxBodyBytes = size
		}
	}

	if v := os.Getenv("MSS_PROVIDERS"); v != "" {
		c.Providers = splitList(v)
	}

	setString(&c.SendGrid.APIKey, "SENDGRID_API_KEY")
	setString(&c.SendGrid.FromMail, "SENDGRID_FROM_MAIL")
	setString(&c.SendGrid.APIURL, "SENDGRID_API_URL")

	setString(&c.Mailgun.APIKey, "MAILGUN_API_KEY")
	setString(&c.Mailgun.FromMail, "MAILGUN_FROM_MAIL")
	setString(&c.Mailgun.APIURL, "MAILGUN_API_URL")

	setString(&c.SES.Region, "SES_REGION")
	setString(&c.SES.AccessKeyID, "SES_ACCESS_KEY_ID")
	setString(&c.SES.SecretAccessKey, "SES_SECRET_ACCESS_KEY")
	setString(&c.SES.FromMail, "SES_FROM_MAIL")

	setString(&c.Graph.TenantID, "GRAPH_TENANT_ID")
	setString(&c.Graph.ClientID, "GRAPH_CLIENT_ID")
	setString(&c.Graph.ClientSecret, "GRAPH_CLIENT_SECRET")
	setString(&c.Graph.FromMail, "GRAPH_FROM_MAIL")

	setString(&c.Resend.APIKey, "RESEND_API_KEY")
	setString(&c.Resend.FromMail, "RESEND_FROM_MAIL")

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	setString(&c.Store.RedisURL, "REDIS_URL")
	setString(&c.Store.Key, "STORE_KEY")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// normalize puts names from either layer into the form Validate expects.
func (c *Config) normalize() {
	providers := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			providers = append(providers, p)
		}
	}
	c.Providers = providers

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = StoreMemory
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
