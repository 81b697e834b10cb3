package domain

import "time"

// Order statuses reported by the storefront backend.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Name    string `json:"name" validate:"required,notblank"`
	Street  string `json:"street" validate:"required,notblank"`
	City    string `json:"city" validate:"required,notblank"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip" validate:"required,notblank"`
	Country string `json:"country" validate:"required,notblank"`
}

// OrderItem is a purchased cart line.
type OrderItem struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

// PaymentResult is the payment confirmation forwarded to the backend.
type PaymentResult struct {
	ID         string `json:"id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	UpdateTime string `json:"update_time,omitempty"`
	Email      string `json:"email_address,omitempty" validate:"omitempty,email"`
}

// Order as returned by the orders endpoints.
type Order struct {
	ID              ID               `json:"_id"`
	Items           []OrderItem      `json:"items"`
	Total           float64          `json:"total"`
	Status          string           `json:"status,omitempty"`
	Date            *time.Time       `json:"date,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentResult   *PaymentResult   `json:"paymentResult,omitempty"`
	IsPaid          bool             `json:"isPaid"`
	PaidAt          *time.Time       `json:"paidAt,omitempty"`
}

// NewOrderRequest is the body posted to create an order.
type NewOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	Total           float64         `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

// OrderItemsFromCart converts cart lines to order lines.
func OrderItemsFromCart(items []CartItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Image:    it.Image,
			Quantity: it.Quantity,
		})
	}
	return out
}
