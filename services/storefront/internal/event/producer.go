package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// Kafka topics for storefront change events.
var (
	TopicCartUpdated     = pkgkafka.Topic("cart", "updated")
	TopicCartCleared     = pkgkafka.Topic("cart", "cleared")
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
	TopicSessionChanged  = pkgkafka.Topic("session", "changed")
)

// Aggregate type for every event: all state is keyed by visitor.
const AggregateTypeVisitor = "visitor"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

const publishTimeout = 5 * time.Second

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	VisitorID  string         `json:"visitor_id"`
	Action     string         `json:"action"`
	ProductID  string         `json:"product_id,omitempty"`
	Items      []CartItemData `json:"items"`
	ItemCount  int            `json:"item_count"`
	TotalPrice float64        `json:"total_price"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	VisitorID string `json:"visitor_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	VisitorID  string   `json:"visitor_id"`
	Action     string   `json:"action"`
	ProductID  string   `json:"product_id,omitempty"`
	ProductIDs []string `json:"product_ids"`
}

// SessionChangedData is the payload for a session.changed event.
type SessionChangedData struct {
	VisitorID string `json:"visitor_id"`
	Action    string `json:"action"`
	UserID    string `json:"user_id,omitempty"`
}

// Publisher is the subset of *pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

type outbound struct {
	topic string
	event *pkgkafka.Event
}

// Producer turns visitor state changes into Kafka events. Change callbacks
// only enqueue; a single worker publishes each container's changes in the
// order they were made, so a slow broker never
// delays a request. Events are dropped when the queue is full.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
	queue  chan outbound
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewProducer starts the publishing worker. Call Close to drain it.
func NewProducer(kafka Publisher, logger *slog.Logger, buffer int) *Producer {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Producer{
		kafka:  kafka,
		logger: logger,
		queue:  make(chan outbound, buffer),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Producer) run() {
	defer p.wg.Done()
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.kafka.Publish(ctx, msg.topic, msg.event); err != nil {
			pkgkafka.ProducerEventsDropped.WithLabelValues(msg.topic, pkgkafka.DropReasonPublishFailed).Inc()
			p.logger.Warn("dropping storefront event after publish failure",
				slog.String("topic", msg.topic),
				slog.String("visitor_id", msg.event.AggregateID),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be published.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Attach subscribes to v's containers. It is a service.VisitorHook.
func (p *Producer) Attach(v *service.Visitor) (detach func()) {
	id := v.ID
	unsubs := []func(){
		v.Cart.Subscribe(func(c service.CartChange) { p.cartChanged(id, c) }),
		v.Wishlist.Subscribe(func(c service.WishlistChange) { p.wishlistChanged(id, c) }),
		v.Session.Subscribe(func(c service.SessionChange) { p.sessionChanged(id, c) }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (p *Producer) cartChanged(visitorID string, c service.CartChange) {
	if c.Action == service.CartActionClear {
		p.enqueue(TopicCartCleared, visitorID, CartClearedData{VisitorID: visitorID})
		return
	}

	items := make([]CartItemData, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartItemData{
			ProductID: item.ID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	p.enqueue(TopicCartUpdated, visitorID, CartUpdatedData{
		VisitorID:  visitorID,
		Action:     c.Action,
		ProductID:  c.ProductID.String(),
		Items:      items,
		ItemCount:  c.TotalItems,
		TotalPrice: c.TotalPrice,
	})
}

func (p *Producer) wishlistChanged(visitorID string, c service.WishlistChange) {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ID.String()
	}
	p.enqueue(TopicWishlistUpdated, visitorID, WishlistUpdatedData{
		VisitorID:  visitorID,
		Action:     c.Action,
		ProductID:  c.ProductID.String(),
		ProductIDs: ids,
	})
}

func (p *Producer) sessionChanged(visitorID string, c service.SessionChange) {
	data := SessionChangedData{VisitorID: visitorID, Action: c.Action}
	if c.User != nil {
		data.UserID = c.User.Key().String()
	}
	p.enqueue(TopicSessionChanged, visitorID, data)
}

func (p *Producer) enqueue(topic, visitorID string, data any) {
	evt, err := pkgkafka.NewEvent(topic, visitorID, AggregateTypeVisitor, SourceStorefront, data)
	if err != nil {
		p.logger.Error("failed to build storefront event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		pkgkafka.ProducerEventsDropped.WithLabelValues(topic, pkgkafka.DropReasonClosed).Inc()
		p.logger.Warn("event producer closed, dropping event", slog.String("topic", topic))
		return
	}

	select {
	case p.queue <- outbound{topic: topic, event: evt}:
	default:
		pkgkafka.ProducerEventsDropped.WithLabelValues(topic, pkgkafka.DropReasonQueueFull).Inc()
		p.logger.Warn("event queue full, dropping event",
			slog.String("topic", topic),
			slog.String("visitor_id", visitorID),
		)
	}
}
