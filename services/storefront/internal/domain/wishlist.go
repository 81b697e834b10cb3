package domain

// WishlistItem is a liked product. ID is normalized on insert; AltID keeps
// the backend's _id so lookups by either identifier succeed.
type WishlistItem struct {
	ID       ID      `json:"id"`
	AltID    ID      `json:"_id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
}

// NewWishlistItem normalizes p into an entry keyed by p.Key().
func NewWishlistItem(p Product) WishlistItem {
	return WishlistItem{
		ID:       p.Key(),
		AltID:    p.AltID,
		Name:     p.DisplayName(),
		Price:    p.Price,
		Image:    p.Image,
		Category: p.Category,
	}
}

// Matches reports whether id equals the primary or the fallback identifier.
func (w WishlistItem) Matches(id ID) bool {
	if id == "" {
		return false
	}
	return w.ID == id || w.AltID == id
}

// Wishlist is the ordered set of liked products.
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

// IndexOf returns the index of the entry whose normalized ID is id, or -1.
func (w *Wishlist) IndexOf(id ID) int {
	for i := range w.Items {
		if w.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether any entry matches id on either identifier.
func (w *Wishlist) Contains(id ID) bool {
	for _, item := range w.Items {
		if item.Matches(id) {
			return true
		}
	}
	return false
}
