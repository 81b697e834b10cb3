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

// Wishlist change actions.
const (
	WishlistActionAdd    = "add"
	WishlistActionRemove = "remove"
	WishlistActionClear  = "clear"
)

// WishlistChange is delivered to wishlist subscribers after every mutation.
type WishlistChange struct {
	Action    string
	ProductID domain.ID
	Items     []domain.WishlistItem
}

// WishlistStore holds one visitor's liked products.
type WishlistStore struct {
	mu        sync.Mutex
	list      domain.Wishlist
	bridge    *storage.Bridge
	logger    *slog.Logger
	listeners listeners[WishlistChange]
}

// NewWishlistStore creates a wishlist restored from storage.WishlistKey.
func NewWishlistStore(ctx context.Context, bridge *storage.Bridge, l *slog.Logger) *WishlistStore {
	if l == nil {
		l = logger.Discard()
	}
	s := &WishlistStore{bridge: bridge, logger: l}

	var saved []domain.WishlistItem
	if bridge.Load(ctx, storage.WishlistKey, &saved) {
		s.list.Items = saved
	}
	return s
}

// AddToWishlist appends p unless an entry with the same id exists.
func (s *WishlistStore) AddToWishlist(ctx context.Context, p domain.Product) {
	item := domain.NewWishlistItem(p)
	if item.ID.IsZero() {
		s.ignore(ctx, p)
		return
	}

	s.mu.Lock()
	if s.list.IndexOf(item.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.list.Items = append(s.list.Items, item)
	change := s.commitLocked(ctx, WishlistActionAdd, item.ID)
	s.listeners.handOff(s.mu.Unlock, change)
}

// RemoveFromWishlist deletes the entry whose id is id. Unknown ids are a
// no-op.
func (s *WishlistStore) RemoveFromWishlist(ctx context.Context, id domain.ID) {
	s.mu.Lock()
	before := len(s.list.Items)
	s.list.Items = slices.DeleteFunc(s.list.Items, func(it domain.WishlistItem) bool {
		return it.ID == id
	})
	if len(s.list.Items) == before {
		s.mu.Unlock()
		return
	}
	change := s.commitLocked(ctx, WishlistActionRemove, id)
	s.listeners.handOff(s.mu.Unlock, change)
}

// ToggleWishlist removes p if present, else adds it. It reports whether p
// is in the wishlist afterwards.
func (s *WishlistStore) ToggleWishlist(ctx context.Context, p domain.Product) bool {
	item := domain.NewWishlistItem(p)
	if item.ID.IsZero() {
		s.ignore(ctx, p)
		return false
	}

	s.mu.Lock()
	var (
		action string
		in     bool
	)
	if i := s.list.IndexOf(item.ID); i >= 0 {
		s.list.Items = slices.Delete(s.list.Items, i, i+1)
		action = WishlistActionRemove
	} else {
		s.list.Items = append(s.list.Items, item)
		action, in = WishlistActionAdd, true
	}
	change := s.commitLocked(ctx, action, item.ID)
	s.listeners.handOff(s.mu.Unlock, change)
	return in
}

// ClearWishlist empties the wishlist and erases the persisted copy.
func (s *WishlistStore) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	s.list.Items = nil
	s.bridge.Remove(ctx, storage.WishlistKey)
	change := WishlistChange{Action: WishlistActionClear, Items: []domain.WishlistItem{}}
	s.listeners.handOff(s.mu.Unlock, change)
}

// IsInWishlist matches id against each entry's id and _id.
func (s *WishlistStore) IsInWishlist(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Contains(id)
}

// Items returns a copy of the entries.
func (s *WishlistStore) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Count returns the number of entries.
func (s *WishlistStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list.Items)
}

// Subscribe registers fn for every subsequent change.
func (s *WishlistStore) Subscribe(fn func(WishlistChange)) (unsubscribe func()) {
	return s.listeners.add(fn)
}

func (s *WishlistStore) ignore(ctx context.Context, p domain.Product) {
	logger.WithContext(ctx, s.logger).Warn("ignoring wishlist product without id",
		slog.String("name", p.Name))
}

func (s *WishlistStore) commitLocked(ctx context.Context, action string, id domain.ID) WishlistChange {
	items := s.list.Items
	if items == nil {
		items = []domain.WishlistItem{}
	}
	s.bridge.Save(ctx, storage.WishlistKey, items)
	return WishlistChange{Action: action, ProductID: id, Items: s.snapshotLocked()}
}

func (s *WishlistStore) snapshotLocked() []domain.WishlistItem {
	out := make([]domain.WishlistItem, len(s.list.Items))
	copy(out, s.list.Items)
	return out
}
