package api

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/shineum/mail-sending-service/internal/request"
)

// Response bodies.
const (
	helloBody       = "Hello World!"
	unavailableBody = "Could not sent an email"
)

type handlers struct {
	dispatcher   Dispatcher
	logger       *slog.Logger
	staticDir    string
	apiDocsFile  string
	maxBodyBytes int64
}

// sendMail handles POST /mail.
//
//	202 empty body          a provider accepted the message
//	400 validation message  the body is not a valid mail request
//	503 unavailableBody     every provider failed or none is configured
func (h *handlers) sendMail(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r.Header.Get("Content-Type")) {
		h.badRequest(w, r, request.ErrNotJSON)
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.badRequest(w, r, request.ErrNotJSON)
		return
	}

	msg, err := request.Parse(body)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// A client that disconnects must not abort an in-flight delivery.
	outcome := h.dispatcher.TrySend(context.WithoutCancel(r.Context()), msg)
	if !outcome.Sent {
		writeText(w, http.StatusServiceUnavailable, unavailableBody)
		return
	}

	h.logger.Info("email accepted",
		"message_id", msg.ID,
		"provider", outcome.Provider,
		"request_id", middleware.GetReqID(r.Context()),
	)
	w.WriteHeader(http.StatusAccepted)
}

// hello handles GET /hello.
func (h *handlers) hello(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, helloBody)
}

// apiDocs handles GET /api.
func (h *handlers) apiDocs(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, filepath.Clean("/"+h.apiDocsFile)))
}

// filesOnly hides directories so the file server never lists them.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (h *handlers) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("invalid mail request",
		"error", err,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeText(w, http.StatusBadRequest, err.Error())
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// isJSON reports whether the content type is application/json or a
// +json structured syntax type.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
