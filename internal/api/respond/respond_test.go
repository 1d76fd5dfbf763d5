package respond

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/shopware"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", models.NewValidationError("name", "missing required field"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", models.NewValidationError("x", "bad")), http.StatusBadRequest},
		{"no credentials", fmt.Errorf("load credentials: %w", models.ErrNoCredentials), http.StatusUnauthorized},
		{"authentication", fmt.Errorf("%w: rejected", models.ErrAuthentication), http.StatusUnauthorized},
		{"upstream 401", &shopware.UpstreamError{Op: "search products", Status: 401}, http.StatusUnauthorized},
		{"not found", fmt.Errorf("discount 3: %w", models.ErrNotFound), http.StatusNotFound},
		{"upstream", &shopware.UpstreamError{Op: "search products", Status: 500}, http.StatusBadGateway},
		{"transport", &url.Error{Op: "Post", URL: "https://shop.test", Err: errors.New("refused")}, http.StatusBadGateway},
		{"deadline", fmt.Errorf("search: %w", context.DeadlineExceeded), http.StatusBadGateway},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := MapError(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestInternalErrorHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	Err(rec, errors.New("pq: password authentication failed for user app"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":"error","message":"internal error"}`, rec.Body.String())
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusOK, []string{})
	assert.JSONEq(t, `{"status":"success","data":[]}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
