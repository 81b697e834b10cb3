package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	visitors visitorSource
	catalog  *service.Catalog
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(registry *service.Registry, catalog *service.Catalog, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		visitors: visitorSource{registry: registry},
		catalog:  catalog,
		logger:   logger,
	}
}

// WishlistResponse is the wishlist as rendered to clients.
type WishlistResponse struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}

// MembershipResponse reports whether a product is liked.
type MembershipResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
}

// ToggleResponse is returned by the toggle endpoint.
type ToggleResponse struct {
	MembershipResponse
	Items []domain.WishlistItem `json:"items"`
}

func wishlistResponse(ws *service.WishlistStore) WishlistResponse {
	return WishlistResponse{Items: ws.Items(), Count: ws.Count()}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, wishlistResponse(v.Wishlist))
}

// AddItem handles POST /api/v1/wishlist/items. Adding a liked product is a no-op.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	product, ok := h.resolve(w, r)
	if !ok {
		return
	}

	v.Wishlist.AddToWishlist(r.Context(), *product)
	httputil.WriteData(w, wishlistResponse(v.Wishlist))
}

// Toggle handles POST /api/v1/wishlist/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	product, ok := h.resolve(w, r)
	if !ok {
		return
	}

	liked := v.Wishlist.ToggleWishlist(r.Context(), *product)
	httputil.WriteData(w, ToggleResponse{
		MembershipResponse: MembershipResponse{ProductID: product.Key().String(), InWishlist: liked},
		Items:              v.Wishlist.Items(),
	})
}

// Contains handles GET /api/v1/wishlist/items/{id}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	httputil.WriteData(w, MembershipResponse{ProductID: id, InWishlist: v.Wishlist.IsInWishlist(domain.ID(id))})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{id}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	v.Wishlist.RemoveFromWishlist(r.Context(), domain.ID(chi.URLParam(r, "id")))
	httputil.WriteData(w, wishlistResponse(v.Wishlist))
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	v.Wishlist.ClearWishlist(r.Context())
	httputil.WriteData(w, wishlistResponse(v.Wishlist))
}

func (h *WishlistHandler) resolve(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	var req ProductRef
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return nil, false
	}

	product, err := h.catalog.Get(r.Context(), domain.ID(req.ProductID))
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return nil, false
	}
	return product, true
}
