package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository/memory"
	"github.com/utafrali/storefront/services/storefront/internal/service"
	"github.com/utafrali/storefront/services/storefront/internal/storage"
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, event *pkgkafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, event: event})
	return f.err
}

func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func newVisitor(t *testing.T, id string) *service.Visitor {
	t.Helper()
	ctx := context.Background()
	bridge := storage.NewBridge(memory.NewKVStore(), nil).Namespace(storage.VisitorNamespace(id))
	return &service.Visitor{
		ID:       id,
		Cart:     service.NewCartStore(ctx, bridge, nil),
		Wishlist: service.NewWishlistStore(ctx, bridge, nil),
		Session:  service.NewSession(bridge, nil),
	}
}

func TestProducer_PublishesVisitorChanges(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub, logger.Discard(), 16)
	v := newVisitor(t, "v-1")
	p.Attach(v)

	ctx := context.Background()
	v.Cart.AddToCart(ctx, domain.Product{ID: "1", Name: "Ganesha", Price: 299})
	v.Cart.ClearCart(ctx)
	v.Wishlist.ToggleWishlist(ctx, domain.Product{ID: "2", Name: "Bowl"})
	v.Session.SetAuth(ctx, "t", &domain.User{AltID: "u1", Name: "Asha"})
	p.Close()

	msgs := pub.all()
	require.Len(t, msgs, 4)
	assert.Equal(t, "storefront.cart.updated", msgs[0].topic)
	assert.Equal(t, "storefront.cart.cleared", msgs[1].topic)
	assert.Equal(t, "storefront.wishlist.updated", msgs[2].topic)
	assert.Equal(t, "storefront.session.changed", msgs[3].topic)

	for _, m := range msgs {
		assert.Equal(t, "v-1", m.event.AggregateID)
		assert.Equal(t, AggregateTypeVisitor, m.event.AggregateType)
		assert.Equal(t, SourceStorefront, m.event.Source)
	}

	var cart CartUpdatedData
	require.NoError(t, msgs[0].event.UnmarshalData(&cart))
	assert.Equal(t, service.CartActionAdd, cart.Action)
	assert.Equal(t, 1, cart.ItemCount)
	assert.Equal(t, 299.0, cart.TotalPrice)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "1", cart.Items[0].ProductID)

	var wishlist WishlistUpdatedData
	require.NoError(t, msgs[2].event.UnmarshalData(&wishlist))
	assert.Equal(t, []string{"2"}, wishlist.ProductIDs)

	var session SessionChangedData
	require.NoError(t, msgs[3].event.UnmarshalData(&session))
	assert.Equal(t, service.SessionActionLogin, session.Action)
	assert.Equal(t, "u1", session.UserID)
}

func TestProducer_DetachStopsEvents(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub, logger.Discard(), 16)
	v := newVisitor(t, "v-2")

	detach := p.Attach(v)
	detach()
	v.Cart.AddToCart(context.Background(), domain.Product{ID: "1"})
	p.Close()

	assert.Empty(t, pub.all())
}

func TestProducer_PublishErrorsAreSwallowed(t *testing.T) {
	dropped := pkgkafka.ProducerEventsDropped.WithLabelValues(TopicCartUpdated, pkgkafka.DropReasonPublishFailed)
	before := testutil.ToFloat64(dropped)

	pub := &fakePublisher{err: errors.New("broker down")}
	p := NewProducer(pub, logger.Discard(), 16)
	v := newVisitor(t, "v-3")
	p.Attach(v)

	assert.NotPanics(t, func() {
		v.Cart.AddToCart(context.Background(), domain.Product{ID: "1"})
		p.Close()
	})
	assert.Len(t, pub.all(), 1)
	assert.Equal(t, before+1, testutil.ToFloat64(dropped))
}

func TestProducer_EnqueueAfterCloseIsDropped(t *testing.T) {
	dropped := pkgkafka.ProducerEventsDropped.WithLabelValues(TopicCartUpdated, pkgkafka.DropReasonClosed)
	before := testutil.ToFloat64(dropped)

	pub := &fakePublisher{}
	p := NewProducer(pub, logger.Discard(), 1)
	v := newVisitor(t, "v-4")
	p.Attach(v)
	p.Close()
	p.Close()

	assert.NotPanics(t, func() {
		v.Cart.AddToCart(context.Background(), domain.Product{ID: "1"})
	})
	assert.Empty(t, pub.all())
	assert.Equal(t, before+1, testutil.ToFloat64(dropped))
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", TopicCartUpdated)
	assert.Equal(t, "storefront.cart.cleared", TopicCartCleared)
	assert.Equal(t, "storefront.wishlist.updated", TopicWishlistUpdated)
	assert.Equal(t, "storefront.session.changed", TopicSessionChanged)
}
