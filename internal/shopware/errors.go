package shopware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

const maxErrorBody = 2 << 10

// UpstreamError is a non-2xx answer from the catalog.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
	Body    string
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("%s: upstream status=%d message=%s", e.Op, e.Status, msg)
}

// Unwrap lets errors.Is(err, models.ErrAuthentication) match a rejected token.
func (e *UpstreamError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return models.ErrAuthentication
	}
	return nil
}

func parseUpstreamError(op string, status int, body []byte) *UpstreamError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	out := &UpstreamError{Op: op, Status: status, Body: text}

	// {"errors":[{"status":"...","title":"...","detail":"..."}]}
	var envelope struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		switch {
		case len(envelope.Errors) > 0 && envelope.Errors[0].Detail != "":
			out.Message = envelope.Errors[0].Detail
		case len(envelope.Errors) > 0:
			out.Message = envelope.Errors[0].Title
		default:
			out.Message = envelope.Message
		}
	}
	return out
}
