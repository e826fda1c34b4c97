package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnvVars = []string{
	"MSS_LISTEN", "MSS_STATIC_FILES_PATH", "MSS_API_DOCS_FILE", "MSS_CORS_ORIGINS", "MSS_MAX_BODY_BYTES",
	"MSS_PROVIDERS",
	"SENDGRID_API_KEY", "SENDGRID_FROM_MAIL", "SENDGRID_API_URL",
	"MAILGUN_API_KEY", "MAILGUN_FROM_MAIL", "MAILGUN_API_URL",
	"SES_REGION", "SES_ACCESS_KEY_ID", "SES_SECRET_ACCESS_KEY", "SES_FROM_MAIL",
	"GRAPH_TENANT_ID", "GRAPH_CLIENT_ID", "GRAPH_CLIENT_SECRET", "GRAPH_FROM_MAIL",
	"RESEND_API_KEY", "RESEND_FROM_MAIL",
	"STORE_BACKEND", "REDIS_URL", "STORE_KEY",
	"LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range allEnvVars {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "./static", cfg.Server.StaticFilesPath)
	assert.Equal(t, "api.html", cfg.Server.APIDocsFile)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Empty(t, cfg.Providers)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MSS_LISTEN", ":9000")
	t.Setenv("MSS_STATIC_FILES_PATH", "/srv/docs")
	t.Setenv("MSS_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("MSS_MAX_BODY_BYTES", "2048")
	t.Setenv("MSS_PROVIDERS", "SendGrid, mailgun,,ses")
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	t.Setenv("SENDGRID_FROM_MAIL", "sg@example.com")
	t.Setenv("MAILGUN_API_KEY", "mg-key")
	t.Setenv("MAILGUN_API_URL", "https://api.mailgun.net/v3/mg.example.com/messages")
	t.Setenv("SES_REGION", "eu-west-1")
	t.Setenv("GRAPH_TENANT_ID", "tid-123")
	t.Setenv("RESEND_API_KEY", "re-key")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORE_KEY", "mss:test")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "/srv/docs", cfg.Server.StaticFilesPath)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(2048), cfg.Server.MaxBodyBytes)
	assert.Equal(t, []string{"sendgrid", "mailgun", "ses"}, cfg.Providers)
	assert.Equal(t, "sg-key", cfg.SendGrid.APIKey)
	assert.Equal(t, "sg@example.com", cfg.SendGrid.FromMail)
	assert.Equal(t, "mg-key", cfg.Mailgun.APIKey)
	assert.Equal(t, "https://api.mailgun.net/v3/mg.example.com/messages", cfg.Mailgun.APIURL)
	assert.Equal(t, "eu-west-1", cfg.SES.Region)
	assert.Equal(t, "tid-123", cfg.Graph.TenantID)
	assert.Equal(t, "re-key", cfg.Resend.APIKey)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, "mss:test", cfg.Store.Key)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidMaxBodyBytesIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("MSS_MAX_BODY_BYTES", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(defaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  listen: ":8181"
  static_files_path: "/var/www/api"
providers:
  - mailgun
  - sendgrid
sendgrid:
  api_key: "yaml-sg"
  from_mail: "noreply@example.com"
  timeout: 10s
mailgun:
  api_key: "yaml-mg"
  from_mail: "noreply@example.com"
  api_url: "https://api.mailgun.net/v3/example.com/messages"
graph:
  tenant_id: "yaml-tenant"
  timeout: 1m
store:
  backend: redis
  redis_url: "redis://cache:6379/1"
logging:
  level: "warn"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Listen)
	assert.Equal(t, "/var/www/api", cfg.Server.StaticFilesPath)
	assert.Equal(t, "api.html", cfg.Server.APIDocsFile, "defaults survive partial YAML")
	assert.Equal(t, []string{"mailgun", "sendgrid"}, cfg.Providers)
	assert.Equal(t, "yaml-sg", cfg.SendGrid.APIKey)
	assert.Equal(t, 10*time.Second, cfg.SendGrid.Timeout)
	assert.Equal(t, "https://api.mailgun.net/v3/example.com/messages", cfg.Mailgun.APIURL)
	assert.Equal(t, time.Minute, cfg.Graph.Timeout)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Store.RedisURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFile_NormalizesNames(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
providers:
  - SendGrid
  - " Mailgun "
store:
  backend: ""
logging:
  level: WARN
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"sendgrid", "mailgun"}, cfg.Providers)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("MSS_PROVIDERS", "resend")
	t.Setenv("LOG_LEVEL", "error")

	path := writeConfig(t, `
providers: [sendgrid, mailgun]
logging:
  level: "warn"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"resend"}, cfg.Providers)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "providers: [sendgrid\n")

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "all providers memory store",
			cfg: Config{
				Providers: []string{"sendgrid", "mailgun", "ses", "graph", "resend", "stdout"},
				Store:     StoreConfig{Backend: StoreMemory},
			},
		},
		{
			name: "no providers is allowed",
			cfg:  Config{Store: StoreConfig{Backend: StoreMemory}},
		},
		{
			name:    "unknown provider",
			cfg:     Config{Providers: []string{"postmark"}, Store: StoreConfig{Backend: StoreMemory}},
			wantErr: `unknown provider "postmark"`,
		},
		{
			name:    "duplicate provider",
			cfg:     Config{Providers: []string{"sendgrid", "sendgrid"}, Store: StoreConfig{Backend: StoreMemory}},
			wantErr: "listed more than once",
		},
		{
			name:    "redis without url",
			cfg:     Config{Store: StoreConfig{Backend: StoreRedis}},
			wantErr: "requires a redis URL",
		},
		{
			name: "empty store backend means memory",
			cfg:  Config{Store: StoreConfig{Backend: ""}},
		},
		{
			name:    "unknown store",
			cfg:     Config{Store: StoreConfig{Backend: "memcached"}},
			wantErr: `unknown store backend "memcached"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
