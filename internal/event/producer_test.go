package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arglo/storefront/internal/domain"
	pkgkafka "github.com/arglo/storefront/pkg/kafka"
	"github.com/arglo/storefront/pkg/logger"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestProducer(w *fakeWriter) *Producer {
	return NewProducer(pkgkafka.NewProducerWithWriter(w, nil, logger.Discard()), logger.Discard())
}

func decode(t *testing.T, msg kafka.Message, target any) *pkgkafka.Event {
	t.Helper()
	var ev pkgkafka.Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	require.NoError(t, json.Unmarshal(ev.Data, target))
	return &ev
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", TopicCartUpdated)
	assert.Equal(t, "storefront.wishlist.item_added", TopicWishlistItemAdded)
	assert.Equal(t, "storefront.wishlist.item_removed", TopicWishlistItemRemoved)
	assert.Equal(t, "storefront.checkout.handoff", TopicCheckoutHandoff)
}

func TestPublishCartUpdated(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	cart := domain.Cart{{ProductID: 7, Title: "Bolso", Price: 10.5, Quantity: 3, Color: "Azul"}}
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	require.NoError(t, p.PublishCartUpdated(ctx, "tab-1", "add", cart))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, TopicCartUpdated, msg.Topic)
	assert.Equal(t, "tab-1", string(msg.Key))

	var data CartUpdatedData
	ev := decode(t, msg, &data)
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, SourceStorefront, ev.Source)
	assert.Equal(t, "add", data.Op)
	assert.Equal(t, 3, data.ItemCount)
	assert.InDelta(t, 31.5, data.Total, 0.001)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "Azul", data.Items[0].Color)
}

func TestPublishWishlistEvents(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	entry := domain.WishlistEntry{ProductID: 2, Title: "Taza", Price: 4, Color: "Default"}

	require.NoError(t, p.PublishWishlistItemAdded(context.Background(), "tab-1", entry))
	require.NoError(t, p.PublishWishlistItemRemoved(context.Background(), "tab-1", entry))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, TopicWishlistItemAdded, w.msgs[0].Topic)
	assert.Equal(t, TopicWishlistItemRemoved, w.msgs[1].Topic)

	var data WishlistItemData
	decode(t, w.msgs[1], &data)
	assert.Equal(t, 2, data.ProductID)
	assert.Equal(t, "Default", data.Color)
}

func TestPublishCheckoutHandoff(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	cart := domain.Cart{{ProductID: 1, Price: 2, Quantity: 2}}

	require.NoError(t, p.PublishCheckoutHandoff(context.Background(), "tab-1", "whatsapp", cart))

	var data CheckoutHandoffData
	decode(t, w.msgs[0], &data)
	assert.Equal(t, "whatsapp", data.Channel)
	assert.Equal(t, 2, data.ItemCount)
	assert.InDelta(t, 4.0, data.Total, 0.001)
}

func TestPublish_ErrorIsReturned(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newTestProducer(w)

	err := p.PublishCartUpdated(context.Background(), "tab-1", "add", domain.Cart{})
	assert.ErrorContains(t, err, "broker down")
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	ctx := context.Background()

	assert.NoError(t, p.PublishCartUpdated(ctx, "t", "add", nil))
	assert.NoError(t, p.PublishWishlistItemAdded(ctx, "t", domain.WishlistEntry{}))
	assert.NoError(t, p.PublishWishlistItemRemoved(ctx, "t", domain.WishlistEntry{}))
	assert.NoError(t, p.PublishCheckoutHandoff(ctx, "t", "clipboard", nil))
}
