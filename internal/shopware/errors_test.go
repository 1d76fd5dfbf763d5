package shopware

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

func TestParseUpstreamErrorMessage(t *testing.T) {
	err := parseUpstreamError(opSearch, http.StatusBadRequest,
		[]byte(`{"errors":[{"status":"400","title":"Bad Request","detail":"Invalid filter"}]}`))

	assert.Equal(t, "Invalid filter", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.False(t, errors.Is(err, models.ErrAuthentication))
}

func TestParseUpstreamErrorTrimsOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxErrorBody-1) + "é" + "tail"

	err := parseUpstreamError(opPatchPrice, http.StatusInternalServerError, []byte(body))

	assert.True(t, utf8.ValidString(err.Body))
	assert.Equal(t, strings.Repeat("a", maxErrorBody-1), err.Body)
}

func TestUpstreamUnauthorizedIsAuthentication(t *testing.T) {
	err := parseUpstreamError(opSearch, http.StatusUnauthorized, nil)
	assert.True(t, errors.Is(err, models.ErrAuthentication))
}
