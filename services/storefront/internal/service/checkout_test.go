package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

type mockOrderPlacer struct {
	mock.Mock
}

func (m *mockOrderPlacer) Create(ctx context.Context, req domain.NewOrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type staticAuth bool

func (a staticAuth) IsAuthenticated(context.Context) bool { return bool(a) }

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:    "Asha Rao",
		Street:  "12 MG Road",
		City:    "Jaipur",
		State:   "RJ",
		Zip:     "302001",
		Country: "India",
	}
}

func filledCart(t *testing.T) *CartStore {
	t.Helper()
	bridge, _ := newTestBridge(t)
	ctx := context.Background()
	cart := NewCartStore(ctx, bridge, nil)
	cart.AddToCart(ctx, domain.Product{ID: "1", Name: "Ganesha", Price: 299, Image: "/g.png"})
	cart.AddToCart(ctx, domain.Product{ID: "1", Name: "Ganesha", Price: 299, Image: "/g.png"})
	cart.AddToCart(ctx, domain.Product{ID: "8", Name: "Candle Holder", Price: 89})
	return cart
}

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	cart := filledCart(t)
	orders := new(mockOrderPlacer)

	want := domain.NewOrderRequest{
		Items: []domain.OrderItem{
			{ID: "1", Name: "Ganesha", Price: 299, Image: "/g.png", Quantity: 2},
			{ID: "8", Name: "Candle Holder", Price: 89, Quantity: 1},
		},
		Total:           687,
		ShippingAddress: validAddress(),
	}
	orders.On("Create", ctx, want).Return(&domain.Order{ID: "o1", Total: 687}, nil)

	order, err := NewCheckoutService(nil).PlaceOrder(ctx, staticAuth(true), cart, orders, validAddress())
	require.NoError(t, err)
	assert.Equal(t, domain.ID("o1"), order.ID)
	assert.Empty(t, cart.Items())
	orders.AssertExpectations(t)
}

func TestPlaceOrder_RequiresLogin(t *testing.T) {
	cart := filledCart(t)
	orders := new(mockOrderPlacer)

	_, err := NewCheckoutService(nil).PlaceOrder(context.Background(), staticAuth(false), cart, orders, validAddress())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, 3, cart.GetTotalItems())
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	bridge, _ := newTestBridge(t)
	cart := NewCartStore(context.Background(), bridge, nil)

	_, err := NewCheckoutService(nil).PlaceOrder(context.Background(), staticAuth(true), cart, new(mockOrderPlacer), validAddress())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaceOrder_InvalidAddress(t *testing.T) {
	cart := filledCart(t)
	addr := validAddress()
	addr.City = "   "
	addr.Zip = ""

	_, err := NewCheckoutService(nil).PlaceOrder(context.Background(), staticAuth(true), cart, new(mockOrderPlacer), addr)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "city")
	assert.Contains(t, valErr.Fields(), "zip")
}

func TestPlaceOrder_BackendFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	cart := filledCart(t)
	orders := new(mockOrderPlacer)
	orders.On("Create", ctx, mock.Anything).Return(nil, &api.APIError{Status: 500, Message: "Something went wrong"})

	_, err := NewCheckoutService(nil).PlaceOrder(ctx, staticAuth(true), cart, orders, validAddress())
	require.Error(t, err)
	assert.Equal(t, 3, cart.GetTotalItems())
}
