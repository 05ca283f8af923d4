// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arglo/storefront/internal/domain"
	pkgkafka "github.com/arglo/storefront/pkg/kafka"
	"github.com/arglo/storefront/pkg/logger"
)

// Kafka topics for storefront events.
var (
	TopicCartUpdated         = pkgkafka.Topic("cart", "updated")
	TopicWishlistItemAdded   = pkgkafka.Topic("wishlist", "item_added")
	TopicWishlistItemRemoved = pkgkafka.Topic("wishlist", "item_removed")
	TopicCheckoutHandoff     = pkgkafka.Topic("checkout", "handoff")
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
)

// SourceStorefront identifies events produced by this service.
const SourceStorefront = "storefront"

// publishTimeout bounds a single publish so a slow broker cannot stall an
// intent.
const publishTimeout = 2 * time.Second

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	TabID     string         `json:"tab_id"`
	Op        string         `json:"op"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Total     float64        `json:"total"`
}

// CartItemData is the line payload within cart events.
type CartItemData struct {
	ProductID int     `json:"product_id"`
	Title     string  `json:"title"`
	Color     string  `json:"color"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// WishlistItemData is the payload for wishlist item events.
type WishlistItemData struct {
	TabID     string  `json:"tab_id"`
	ProductID int     `json:"product_id"`
	Title     string  `json:"title"`
	Color     string  `json:"color"`
	Price     float64 `json:"price"`
}

// CheckoutHandoffData is the payload for a checkout.handoff event.
type CheckoutHandoffData struct {
	TabID     string  `json:"tab_id"`
	Channel   string  `json:"channel"`
	ItemCount int     `json:"item_count"`
	Total     float64 `json:"total"`
}

// Publisher emits storefront events. Implementations return errors for the
// caller to log; a failed publish never undoes the state change.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, tabID, op string, cart domain.Cart) error
	PublishWishlistItemAdded(ctx context.Context, tabID string, entry domain.WishlistEntry) error
	PublishWishlistItemRemoved(ctx context.Context, tabID string, entry domain.WishlistEntry) error
	PublishCheckoutHandoff(ctx context.Context, tabID, channel string, cart domain.Cart) error
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event with the full cart.
func (p *Producer) PublishCartUpdated(ctx context.Context, tabID, op string, cart domain.Cart) error {
	items := make([]CartItemData, len(cart))
	for i, line := range cart {
		items[i] = CartItemData{
			ProductID: line.ProductID,
			Title:     line.Title,
			Color:     line.Color,
			Price:     line.Price,
			Quantity:  line.Quantity,
		}
	}

	data := CartUpdatedData{
		TabID:     tabID,
		Op:        op,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}

	return p.publish(ctx, TopicCartUpdated, tabID, AggregateTypeCart, data)
}

// PublishWishlistItemAdded publishes a wishlist.item_added event.
func (p *Producer) PublishWishlistItemAdded(ctx context.Context, tabID string, entry domain.WishlistEntry) error {
	return p.publish(ctx, TopicWishlistItemAdded, tabID, AggregateTypeWishlist, wishlistData(tabID, entry))
}

// PublishWishlistItemRemoved publishes a wishlist.item_removed event.
func (p *Producer) PublishWishlistItemRemoved(ctx context.Context, tabID string, entry domain.WishlistEntry) error {
	return p.publish(ctx, TopicWishlistItemRemoved, tabID, AggregateTypeWishlist, wishlistData(tabID, entry))
}

// PublishCheckoutHandoff publishes a checkout.handoff event.
func (p *Producer) PublishCheckoutHandoff(ctx context.Context, tabID, channel string, cart domain.Cart) error {
	data := CheckoutHandoffData{
		TabID:     tabID,
		Channel:   channel,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
	return p.publish(ctx, TopicCheckoutHandoff, tabID, AggregateTypeCart, data)
}

func (p *Producer) publish(ctx context.Context, topic, tabID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, tabID, aggregateType, SourceStorefront, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata("tab_id", tabID),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published storefront event",
		slog.String("topic", topic),
		slog.String("tab_id", tabID),
	)
	return nil
}

func wishlistData(tabID string, entry domain.WishlistEntry) WishlistItemData {
	return WishlistItemData{
		TabID:     tabID,
		ProductID: entry.ProductID,
		Title:     entry.Title,
		Color:     entry.Color,
		Price:     entry.Price,
	}
}

// Noop discards every event. It is used when events are disabled.
type Noop struct{}

func (Noop) PublishCartUpdated(context.Context, string, string, domain.Cart) error { return nil }

func (Noop) PublishWishlistItemAdded(context.Context, string, domain.WishlistEntry) error {
	return nil
}

func (Noop) PublishWishlistItemRemoved(context.Context, string, domain.WishlistEntry) error {
	return nil
}

func (Noop) PublishCheckoutHandoff(context.Context, string, string, domain.Cart) error { return nil }
