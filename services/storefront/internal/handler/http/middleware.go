package http

import (
	"net/http"
	"strings"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// visitorSource resolves the state containers of the calling visitor.
type visitorSource struct {
	registry *service.Registry
}

// current returns the visitor identified by the cookie middleware. It writes
// a 400 and returns false when the request carries no visitor id.
func (s visitorSource) current(w http.ResponseWriter, r *http.Request) (*service.Visitor, bool) {
	id := logger.VisitorIDFromContext(r.Context())
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "MISSING_VISITOR", Message: "visitor cookie is required"},
		})
		return nil, false
	}
	return s.registry.Get(r.Context(), id), true
}
