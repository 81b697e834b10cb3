package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/storage"
)

// Cart change actions.
const (
	CartActionAdd    = "add"
	CartActionRemove = "remove"
	CartActionUpdate = "update_quantity"
	CartActionClear  = "clear"
)

// CartChange is delivered to cart subscribers after every mutation.
type CartChange struct {
	Action     string
	ProductID  domain.ID
	Items      []domain.CartItem
	TotalItems int
	TotalPrice float64
}

// CartStore holds one visitor's cart. It restores from the bridge on
// construction and writes back after every change.
type CartStore struct {
	mu        sync.Mutex
	cart      domain.Cart
	bridge    *storage.Bridge
	logger    *slog.Logger
	listeners listeners[CartChange]
}

// NewCartStore creates a cart and adopts whatever the bridge holds under
// storage.CartKey. A missing or corrupt value leaves the cart empty.
func NewCartStore(ctx context.Context, bridge *storage.Bridge, l *slog.Logger) *CartStore {
	if l == nil {
		l = logger.Discard()
	}
	s := &CartStore{bridge: bridge, logger: l}

	var saved []domain.CartItem
	if bridge.Load(ctx, storage.CartKey, &saved) {
		s.cart.Items = saved
	}
	return s
}

// AddToCart increments the line for p, or appends a new line of one.
func (s *CartStore) AddToCart(ctx context.Context, p domain.Product) {
	id := p.Key()
	if id.IsZero() {
		logger.WithContext(ctx, s.logger).Warn("ignoring cart add for product without id",
			slog.String("name", p.Name))
		return
	}

	s.mu.Lock()
	if i := s.cart.FindItemIndex(id); i >= 0 {
		s.cart.Items[i].Quantity++
	} else {
		s.cart.Items = append(s.cart.Items, domain.NewCartItem(p))
	}
	change := s.commitLocked(ctx, CartActionAdd, id)
	s.listeners.handOff(s.mu.Unlock, change)
}

// RemoveFromCart deletes the line for id. Unknown ids are a no-op.
func (s *CartStore) RemoveFromCart(ctx context.Context, id domain.ID) {
	s.mu.Lock()
	before := len(s.cart.Items)
	s.cart.Items = slices.DeleteFunc(s.cart.Items, func(it domain.CartItem) bool {
		return it.ID == id
	})
	if len(s.cart.Items) == before {
		s.mu.Unlock()
		return
	}
	change := s.commitLocked(ctx, CartActionRemove, id)
	s.listeners.handOff(s.mu.Unlock, change)
}

// UpdateQuantity sets the quantity for id, clamped to at least 1. Unknown
// ids are a no-op.
func (s *CartStore) UpdateQuantity(ctx context.Context, id domain.ID, quantity int) {
	s.mu.Lock()
	i := s.cart.FindItemIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.cart.Items[i].Quantity = max(1, quantity)
	change := s.commitLocked(ctx, CartActionUpdate, id)
	s.listeners.handOff(s.mu.Unlock, change)
}

// ClearCart empties the cart and erases the persisted copy.
func (s *CartStore) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.cart.Items = nil
	s.bridge.Remove(ctx, storage.CartKey)
	change := s.changeLocked(CartActionClear, "")
	s.listeners.handOff(s.mu.Unlock, change)
}

// GetTotalItems sums quantities across lines.
func (s *CartStore) GetTotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

// GetTotalPrice sums price * quantity across lines.
func (s *CartStore) GetTotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// Items returns a copy of the current lines.
func (s *CartStore) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Snapshot returns the lines and both totals under a single lock.
func (s *CartStore) Snapshot() CartChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeLocked("", "")
}

// Subscribe registers fn for every subsequent change.
func (s *CartStore) Subscribe(fn func(CartChange)) (unsubscribe func()) {
	return s.listeners.add(fn)
}

func (s *CartStore) commitLocked(ctx context.Context, action string, id domain.ID) CartChange {
	s.bridge.Save(ctx, storage.CartKey, s.persistableLocked())
	return s.changeLocked(action, id)
}

// persistableLocked encodes an empty cart as [] rather than null.
func (s *CartStore) persistableLocked() []domain.CartItem {
	if s.cart.Items == nil {
		return []domain.CartItem{}
	}
	return s.cart.Items
}

func (s *CartStore) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(s.cart.Items))
	copy(out, s.cart.Items)
	return out
}

func (s *CartStore) changeLocked(action string, id domain.ID) CartChange {
	return CartChange{
		Action:     action,
		ProductID:  id,
		Items:      s.snapshotLocked(),
		TotalItems: s.cart.TotalItems(),
		TotalPrice: s.cart.TotalPrice(),
	}
}
