package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// OrderHandler handles checkout and the order pages.
type OrderHandler struct {
	visitors visitorSource
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(registry *service.Registry, checkout *service.CheckoutService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		visitors: visitorSource{registry: registry},
		checkout: checkout,
		logger:   logger,
	}
}

// CheckoutRequest is the JSON request body for placing an order.
type CheckoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

// Checkout handles POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	// The address is validated by PlaceOrder, after the login check.
	var req CheckoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		httputil.WriteValidationError(w, fmt.Errorf("decode request body: %w", err))
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), v.Session, v.Cart, v.Orders(), req.ShippingAddress)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// ListOrders handles GET /api/v1/orders. Query parameters are forwarded.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	orders, err := v.Orders().List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	httputil.WriteData(w, orders)
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	order, err := v.Orders().Get(r.Context(), domain.ID(chi.URLParam(r, "id")))
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteData(w, order)
}

// PayOrder handles PUT /api/v1/orders/{id}/pay
func (h *OrderHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	var req domain.PaymentResult
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := v.Orders().MarkPaid(r.Context(), domain.ID(chi.URLParam(r, "id")), req)
	if err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteData(w, order)
}
