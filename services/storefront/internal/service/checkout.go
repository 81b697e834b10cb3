package service

import (
	"context"
	"log/slog"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// OrderPlacer creates orders on the backend.
type OrderPlacer interface {
	Create(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error)
}

// Authenticator reports whether the visitor is logged in.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// CheckoutService turns a visitor's cart into a backend order.
type CheckoutService struct {
	logger *slog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(l *slog.Logger) *CheckoutService {
	if l == nil {
		l = logger.Discard()
	}
	return &CheckoutService{logger: l}
}

// PlaceOrder submits the cart with shipping as a new order. The cart is
// cleared only after the backend accepts the order.
func (s *CheckoutService) PlaceOrder(
	ctx context.Context,
	auth Authenticator,
	cart *CartStore,
	orders OrderPlacer,
	shipping domain.ShippingAddress,
) (*domain.Order, error) {
	if !auth.IsAuthenticated(ctx) {
		return nil, apperrors.Unauthorized("please log in to place an order")
	}
	if err := validator.Validate(shipping); err != nil {
		return nil, err
	}

	snap := cart.Snapshot()
	if len(snap.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	order, err := orders.Create(ctx, domain.NewOrderRequest{
		Items:           domain.OrderItemsFromCart(snap.Items),
		Total:           snap.TotalPrice,
		ShippingAddress: shipping,
	})
	if err != nil {
		logger.WithContext(ctx, s.logger).Warn("order placement failed",
			slog.Int("items", len(snap.Items)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	cart.ClearCart(ctx)
	logger.WithContext(ctx, s.logger).Info("order placed",
		slog.String("order_id", order.ID.String()),
		slog.Float64("total", snap.TotalPrice),
	)
	return order, nil
}
