package handler

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/actuallystonmai/country-directory/internal/service"
	"go.uber.org/zap"
)

// Pinger reports backing store health. Nil means nothing to check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	service *service.Service
	pinger  Pinger
	log     *zap.Logger
	pages   *template.Template
}

func NewHandler(svc *service.Service, pinger Pinger, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		service: svc,
		pinger:  pinger,
		log:     log.Named("handler"),
		pages:   pageTemplate,
	}
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.log.Warn("health_ping_failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Store: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// errorStatus maps service errors to an HTTP status and error code.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found", "Session does not exist or has expired"
	case errors.Is(err, domain.ErrInvalidFilter):
		return http.StatusBadRequest, "invalid_parameter", "Gender must be one of all, male, female"
	case errors.Is(err, domain.ErrLoadInProgress):
		return http.StatusConflict, "load_in_progress", "A load is already running for this session"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again"
	}
	return http.StatusInternalServerError, "internal_error", "An unexpected error occurred"
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request_failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, code, msg)
}
