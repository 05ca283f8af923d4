// Package metrics declares the storefront's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Wishlist toggle outcomes.
const (
	OutcomeAdded   = "added"
	OutcomeRemoved = "removed"
)

// Sync results.
const (
	SyncApplied   = "applied"
	SyncDiscarded = "discarded"
)

var (
	// CartMutations counts cart changes by operation.
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		},
		[]string{"op"},
	)

	// WishlistToggles counts wishlist toggles by outcome.
	WishlistToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_wishlist_toggles_total",
			Help: "Total number of wishlist toggles by outcome",
		},
		[]string{"outcome"},
	)

	// StorageWriteFailures counts persist attempts that did not reach storage.
	StorageWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_storage_write_failures_total",
			Help: "Total number of failed storage writes by key",
		},
		[]string{"key"},
	)

	// SyncEvents counts cross-tab notifications by key and result.
	SyncEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_sync_events_total",
			Help: "Total number of cross-tab storage notifications by key and result",
		},
		[]string{"key", "result"},
	)

	// CheckoutHandoffs counts checkout handoffs by channel.
	CheckoutHandoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_handoffs_total",
			Help: "Total number of checkout handoffs by channel",
		},
		[]string{"channel"},
	)

	// StorageFallback is 1 while the process runs on in-memory storage.
	StorageFallback = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_storage_fallback",
			Help: "1 when persistent storage is unavailable and state is memory-only",
		},
	)
)
