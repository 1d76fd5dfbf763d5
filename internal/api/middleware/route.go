package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern is the matched chi pattern, so metrics stay low-cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
