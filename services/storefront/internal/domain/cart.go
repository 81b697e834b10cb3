package domain

// CartItem is one line of the cart. There is at most one line per ID.
type CartItem struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
	Quantity int     `json:"quantity"`
}

// NewCartItem builds a single-quantity line for p.
func NewCartItem(p Product) CartItem {
	return CartItem{
		ID:       p.Key(),
		Name:     p.DisplayName(),
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
		Quantity: 1,
	}
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart is the ordered list of lines in insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

// TotalItems sums quantities across all lines.
func (c *Cart) TotalItems() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// TotalPrice sums price * quantity. No rounding is applied.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// FindItemIndex returns the index of the line for id, or -1.
func (c *Cart) FindItemIndex(id ID) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}
