package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons reported by ProducerEventsDropped.
const (
	DropReasonQueueFull     = "queue_full"
	DropReasonClosed        = "closed"
	DropReasonPublishFailed = "publish_failed"
)

var (
	// ProducerMessagesPublished counts messages accepted by the broker.
	ProducerMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_messages_published_total",
			Help: "Total number of Kafka messages published",
		},
		[]string{"topic"},
	)

	// ProducerPublishErrors counts publish failures.
	ProducerPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_publish_errors_total",
			Help: "Total number of Kafka publish errors",
		},
		[]string{"topic"},
	)

	// ProducerPublishDuration observes the duration of publish operations.
	ProducerPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	// ProducerEventsDropped counts events given up on before or after a
	// publish attempt. Storefront events are best effort.
	ProducerEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_events_dropped_total",
			Help: "Total number of events dropped without being published",
		},
		[]string{"topic", "reason"},
	)
)
