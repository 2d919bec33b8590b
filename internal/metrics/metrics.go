package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "booking_transitions_total",
			Help:      "Admin transitions by outcome.",
		},
		[]string{"status"},
	)

	cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "booking_cancellations_total",
			Help:      "Owner-initiated cancellations.",
		},
	)

	conflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "slot_conflicts_total",
			Help:      "Create requests rejected because the slot was taken.",
		},
	)

	notifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "notification_failures_total",
			Help:      "Notification deliveries that failed after retries.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			transitions,
			cancellations,
			conflicts,
			notifyFailures,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncTransition(status string) {
	transitions.WithLabelValues(status).Inc()
}

func IncCancellation() {
	cancellations.Inc()
}

func IncConflict() {
	conflicts.Inc()
}

func IncNotifyFailure() {
	notifyFailures.Inc()
}
