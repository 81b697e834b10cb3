package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// OrdersAPI wraps the /orders endpoints. All of them require a token.
type OrdersAPI struct {
	c *Client
}

// Create places an order.
func (o *OrdersAPI) Create(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error) {
	var order domain.Order
	if _, err := o.c.Do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns the caller's orders. params are passed through as the query.
func (o *OrdersAPI) List(ctx context.Context, params map[string]string) ([]domain.Order, error) {
	var orders []domain.Order
	if _, err := o.c.Do(ctx, http.MethodGet, "/orders"+Query(params), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns one order.
func (o *OrdersAPI) Get(ctx context.Context, id domain.ID) (*domain.Order, error) {
	var order domain.Order
	if _, err := o.c.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id.String()), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid records payment for an order.
func (o *OrdersAPI) MarkPaid(ctx context.Context, id domain.ID, payment domain.PaymentResult) (*domain.Order, error) {
	var order domain.Order
	if _, err := o.c.Do(ctx, http.MethodPut, "/orders/"+url.PathEscape(id.String())+"/pay", payment, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
