// Package respond writes the service's JSON envelope:
// {"status":"success","data":...} or {"status":"error","message":...}.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
	"github.com/Cheertaboi/catalog-discount-service/internal/shopware"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes data under "data". A nil data writes just the status.
func Success(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Status: StatusSuccess, Data: data})
}

// Message writes a success envelope with a message instead of data.
func Message(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Envelope{Status: StatusSuccess, Message: msg})
}

func Error(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Envelope{Status: StatusError, Message: msg})
}

// Err maps err to a status code and writes it. Internal errors are not
// exposed to the client.
func Err(w http.ResponseWriter, err error) int {
	code, msg := MapError(err)
	Error(w, code, msg)
	return code
}

func MapError(err error) (int, string) {
	var (
		verr   *models.ValidationError
		uerr   *shopware.UpstreamError
		urlErr *url.Error
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, models.ErrNoCredentials):
		return http.StatusUnauthorized, "No credentials found"
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &uerr), errors.As(err, &urlErr), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
