package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/actuallystonmai/country-directory/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("get: %w", domain.ErrSessionNotFound), http.StatusNotFound, "session_not_found"},
		{domain.ErrInvalidFilter, http.StatusBadRequest, "invalid_parameter"},
		{domain.ErrLoadInProgress, http.StatusConflict, "load_in_progress"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "request_timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		status, code, msg := errorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code)
		assert.NotEmpty(t, msg)
	}
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthDegraded(t *testing.T) {
	h := NewHandler(nil, pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), nil)
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}
