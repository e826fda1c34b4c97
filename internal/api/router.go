// Package api exposes the mail sending service over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shineum/mail-sending-service/internal/dispatch"
	"github.com/shineum/mail-sending-service/internal/email"
)

// Dispatcher delivers a validated message through the configured providers.
type Dispatcher interface {
	TrySend(ctx context.Context, msg *email.Message) dispatch.Outcome
}

// RouterConfig holds everything the route table needs.
type RouterConfig struct {
	Dispatcher Dispatcher
	Logger     *slog.Logger

	// StaticFilesPath is the directory the API documentation is served from.
	StaticFilesPath string
	// APIDocsFile is the file served at GET /api, relative to StaticFilesPath.
	APIDocsFile string

	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string

	// MaxBodyBytes caps the size of a mail request body. Zero means no limit.
	MaxBodyBytes int64
}

// NewRouter builds the route table. Routes are registered here and nowhere
// else.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handlers{
		dispatcher:   cfg.Dispatcher,
		logger:       logger,
		staticDir:    cfg.StaticFilesPath,
		apiDocsFile:  cfg.APIDocsFile,
		maxBodyBytes: cfg.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Post("/mail", h.sendMail)
	r.Get("/hello", h.hello)
	r.Get("/api", h.apiDocs)
	r.Handle("/api/*", http.StripPrefix("/api/", http.FileServer(filesOnly{http.Dir(cfg.StaticFilesPath)})))

	return r
}
