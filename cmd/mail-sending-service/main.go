// Package main is the entry point for the mail sending service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shineum/mail-sending-service/internal/api"
	"github.com/shineum/mail-sending-service/internal/config"
	"github.com/shineum/mail-sending-service/internal/dispatch"
	"github.com/shineum/mail-sending-service/internal/provider"
	"github.com/shineum/mail-sending-service/internal/provider/graph"
	"github.com/shineum/mail-sending-service/internal/provider/mailgun"
	"github.com/shineum/mail-sending-service/internal/provider/resend"
	"github.com/shineum/mail-sending-service/internal/provider/sendgrid"
	"github.com/shineum/mail-sending-service/internal/provider/ses"
	"github.com/shineum/mail-sending-service/internal/provider/stdout"
	"github.com/shineum/mail-sending-service/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("MSS_CONFIG_PATH"), "path to YAML configuration file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	if providers.Len() == 0 {
		slog.Warn("no providers configured, every mail request will be rejected")
	}

	st, closeStore, err := buildStore(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}

	dispatcher := dispatch.New(providers, st, dispatch.WithLogger(slog.Default()))

	server := api.NewServer(api.ServerConfig{
		ListenAddr: cfg.Server.Listen,
		Handler: api.NewRouter(api.RouterConfig{
			Dispatcher:      dispatcher,
			Logger:          slog.Default(),
			StaticFilesPath: cfg.Server.StaticFilesPath,
			APIDocsFile:     cfg.Server.APIDocsFile,
			CORSOrigins:     cfg.Server.CORSOrigins,
			MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		}),
		Logger: slog.Default(),
	})

	slog.Info("starting mail-sending-service",
		"listen", cfg.Server.Listen,
		"providers", providers.Names(),
		"store", cfg.Store.Backend,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	if err := serve(ctx, server, closeStore); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("mail-sending-service stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildProviders creates the backends named in cfg.Providers, keeping their
// order. That order is the failover order.
func buildProviders(ctx context.Context, cfg *config.Config) (*provider.List, error) {
	providers := make([]provider.Provider, 0, len(cfg.Providers))

	for _, name := range cfg.Providers {
		var p provider.Provider

		switch name {
		case config.ProviderSendGrid:
			p = sendgrid.New(sendgrid.Config{
				APIKey:   cfg.SendGrid.APIKey,
				FromMail: cfg.SendGrid.FromMail,
				APIURL:   cfg.SendGrid.APIURL,
				Timeout:  cfg.SendGrid.Timeout,
			})

		case config.ProviderMailgun:
			p = mailgun.New(mailgun.Config{
				APIKey:   cfg.Mailgun.APIKey,
				FromMail: cfg.Mailgun.FromMail,
				APIURL:   cfg.Mailgun.APIURL,
				Timeout:  cfg.Mailgun.Timeout,
			})

		case config.ProviderSES:
			sp, err := ses.New(ctx, ses.Config{
				Region:          cfg.SES.Region,
				AccessKeyID:     cfg.SES.AccessKeyID,
				SecretAccessKey: cfg.SES.SecretAccessKey,
				FromMail:        cfg.SES.FromMail,
			})
			if err != nil {
				return nil, fmt.Errorf("ses: %w", err)
			}
			p = sp

		case config.ProviderGraph:
			p = graph.New(graph.Config{
				TenantID:     cfg.Graph.TenantID,
				ClientID:     cfg.Graph.ClientID,
				ClientSecret: cfg.Graph.ClientSecret,
				FromMail:     cfg.Graph.FromMail,
				Timeout:      cfg.Graph.Timeout,
			})

		case config.ProviderResend:
			p = resend.New(resend.Config{
				APIKey:   cfg.Resend.APIKey,
				FromMail: cfg.Resend.FromMail,
			})

		case config.ProviderStdout:
			p = stdout.New()

		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}

		slog.Info("provider registered", "index", len(providers), "provider", p.Name())
		providers = append(providers, p)
	}

	return provider.NewList(providers...), nil
}

type listener interface {
	ListenAndServe(ctx context.Context) error
}

// serve runs srv until ctx is cancelled and then releases the store. The
// store is closed on the error path too, since os.Exit skips deferred calls.
func serve(ctx context.Context, srv listener, st io.Closer) error {
	serveErr := srv.ListenAndServe(ctx)

	if err := st.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
	return serveErr
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildStore opens the current provider store. The returned closer releases
// the backend connection, if any.
func buildStore(ctx context.Context, cfg config.StoreConfig) (store.Store, io.Closer, error) {
	switch cfg.Backend {
	case "", config.StoreMemory:
		return store.NewMemory(), nopCloser{}, nil

	case config.StoreRedis:
		client, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(client, cfg.Key), client, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
