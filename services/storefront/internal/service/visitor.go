package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/storage"
)

// Visitor is the state container set for one visitor id.
type Visitor struct {
	ID       string
	Cart     *CartStore
	Wishlist *WishlistStore
	Session  *Session
	API      *api.Client

	lastSeen time.Time
	detach   []func()
}

// Orders returns the order endpoints authenticated as this visitor.
func (v *Visitor) Orders() *api.OrdersAPI { return v.API.Orders() }

// Auth returns the auth endpoints bound to this visitor's session.
func (v *Visitor) Auth() *api.AuthAPI { return v.API.Auth() }

// VisitorHook runs when a Visitor is created. The returned func, if any,
// runs when the visitor is evicted.
type VisitorHook func(v *Visitor) (detach func())

// Registry keeps one Visitor per id and evicts those idle for longer than
// the configured timeout. Evicted visitors rebuild from storage on their
// next request.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*Visitor
	bridge   *storage.Bridge
	client   *api.Client
	logger   *slog.Logger
	idle     time.Duration
	now      func() time.Time
	hooks    []VisitorHook
}

// NewRegistry creates a registry. A zero idle timeout disables eviction.
func NewRegistry(bridge *storage.Bridge, client *api.Client, l *slog.Logger, idle time.Duration) *Registry {
	if l == nil {
		l = logger.Discard()
	}
	return &Registry{
		visitors: make(map[string]*Visitor),
		bridge:   bridge,
		client:   client,
		logger:   l,
		idle:     idle,
		now:      time.Now,
	}
}

// OnCreate registers a hook for visitors created after this call.
func (r *Registry) OnCreate(hook VisitorHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Get returns the visitor for id, restoring it from storage if needed.
// Storage is read outside the registry lock and is not canceled with the
// request, so a restored visitor always holds what was persisted.
func (r *Registry) Get(ctx context.Context, id string) *Visitor {
	r.mu.Lock()
	if v, ok := r.visitors[id]; ok {
		v.lastSeen = r.now()
		r.mu.Unlock()
		return v
	}
	r.mu.Unlock()

	built := r.build(context.WithoutCancel(ctx), id)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request restored the same visitor first.
	if v, ok := r.visitors[id]; ok {
		v.lastSeen = r.now()
		return v
	}

	built.lastSeen = r.now()
	for _, hook := range r.hooks {
		if detach := hook(built); detach != nil {
			built.detach = append(built.detach, detach)
		}
	}
	r.visitors[id] = built
	return built
}

func (r *Registry) build(ctx context.Context, id string) *Visitor {
	ns := r.bridge.Namespace(storage.VisitorNamespace(id))
	session := NewSession(ns, r.logger)

	return &Visitor{
		ID:       id,
		Cart:     NewCartStore(ctx, ns, r.logger),
		Wishlist: NewWishlistStore(ctx, ns, r.logger),
		Session:  session,
		API:      r.client.For(session),
	}
}

// Len returns the number of live visitors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep evicts visitors idle for longer than the timeout and returns how
// many were removed.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}

	r.mu.Lock()
	cutoff := r.now().Add(-r.idle)
	var evicted []*Visitor
	for id, v := range r.visitors {
		if v.lastSeen.Before(cutoff) {
			evicted = append(evicted, v)
			delete(r.visitors, id)
		}
	}
	r.mu.Unlock()

	for _, v := range evicted {
		for _, detach := range v.detach {
			detach()
		}
	}
	if len(evicted) > 0 {
		r.logger.Debug("evicted idle visitors", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// StartJanitor sweeps every interval until the returned stop func is called.
func (r *Registry) StartJanitor(interval time.Duration) (stop func()) {
	if r.idle <= 0 || interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-done:
				return
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}
