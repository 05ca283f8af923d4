package kafka

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons recorded by PublishFailures.
const (
	ReasonTimeout  = "timeout"
	ReasonCanceled = "canceled"
	ReasonBroker   = "broker"
)

var (
	// EventsPublished counts events accepted by the brokers.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events accepted by Kafka, by topic and event type.",
		},
		[]string{"topic", "event_type"},
	)

	// PublishFailures counts events that could not be written.
	PublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Events Kafka did not accept, by topic and reason.",
		},
		[]string{"topic", "reason"},
	)

	// PublishDuration observes how long a write takes, failed or not.
	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "events",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka writes in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2},
		},
		[]string{"topic"},
	)
)

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	default:
		return ReasonBroker
	}
}
