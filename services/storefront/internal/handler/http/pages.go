package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/services/storefront/internal/content"
)

// PageHandler serves the static content pages.
type PageHandler struct {
	pages *content.Library
}

// NewPageHandler creates a page handler over lib.
func NewPageHandler(lib *content.Library) *PageHandler {
	return &PageHandler{pages: lib}
}

// ListPages handles GET /pages
func (h *PageHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.pages.List())
}

// GetPage handles GET /pages/{slug}
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "slug")
	page, ok := h.pages.Get(name)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("page", name), nil)
		return
	}
	httputil.WriteData(w, page)
}
