package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	catalog *service.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(catalog *service.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// CategoriesResponse lists the filter and sort options of the listing.
type CategoriesResponse struct {
	Categories []service.CategoryCount `json:"categories"`
	Sorts      []string                `json:"sorts"`
	Source     string                  `json:"source"`
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := catalogQueryFromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	listing, err := h.catalog.List(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteData(w, listing)
}

// GetProduct handles GET /api/v1/products/{id}. Bundled products may also be
// addressed by name slug.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), domain.ID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}
	httputil.WriteData(w, product)
}

// ListCategories handles GET /api/v1/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	counts, source, err := h.catalog.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteData(w, CategoriesResponse{
		Categories: counts,
		Sorts:      service.SortKeys(),
		Source:     source,
	})
}

func catalogQueryFromRequest(r *http.Request) (service.CatalogQuery, error) {
	v := r.URL.Query()
	q := service.CatalogQuery{
		Category: v.Get("category"),
		Sort:     v.Get("sort"),
		Search:   v.Get("search"),
		Page:     pagination.FromRequest(r),
	}

	if raw := v.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return q, apperrors.InvalidInput("featured must be true or false")
		}
		q.Featured = featured
	}

	if raw := v.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return q, apperrors.InvalidInput("limit must be a non-negative integer")
		}
		q.Limit = limit
	}

	return q, nil
}
