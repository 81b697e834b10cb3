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

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	visitors visitorSource
	catalog  *service.Catalog
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(registry *service.Registry, catalog *service.Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		visitors: visitorSource{registry: registry},
		catalog:  catalog,
		logger:   logger,
	}
}

// --- Request DTOs ---

// ProductRef names a catalog product in a request body.
type ProductRef struct {
	ProductID string `json:"product_id" validate:"required,notblank"`
}

// UpdateQuantityRequest is the JSON request body for updating a line quantity.
// Values below 1 are clamped to 1.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse is the cart as rendered to clients.
type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice float64           `json:"total_price"`
}

func cartResponse(c service.CartChange) CartResponse {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{Items: items, TotalItems: c.TotalItems, TotalPrice: c.TotalPrice}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, cartResponse(v.Cart.Snapshot()))
}

// AddItem handles POST /api/v1/cart/items. The product is resolved through
// the catalog so prices come from the backend, not the client.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	var req ProductRef
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.Get(r.Context(), domain.ID(req.ProductID))
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	v.Cart.AddToCart(r.Context(), *product)
	httputil.WriteData(w, cartResponse(v.Cart.Snapshot()))
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{id}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	v.Cart.UpdateQuantity(r.Context(), domain.ID(chi.URLParam(r, "id")), req.Quantity)
	httputil.WriteData(w, cartResponse(v.Cart.Snapshot()))
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	v.Cart.RemoveFromCart(r.Context(), domain.ID(chi.URLParam(r, "id")))
	httputil.WriteData(w, cartResponse(v.Cart.Snapshot()))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	v.Cart.ClearCart(r.Context())
	httputil.WriteData(w, cartResponse(v.Cart.Snapshot()))
}
