package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsolve_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civicsolve_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	complaintsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsolve_complaints_created_total",
		Help: "Complaints created, by category",
	}, []string{"category"})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsolve_status_transitions_total",
		Help: "Lifecycle transitions by origin and target status",
	}, []string{"from", "to"})

	upvotes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civicsolve_upvotes_total",
		Help: "Upvotes recorded",
	})

	escalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civicsolve_escalations_total",
		Help: "Escalations recorded",
	})

	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsolve_notifications_total",
		Help: "Notification deliveries by channel and result",
	}, []string{"channel", "result"})

	storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsolve_store_failures_total",
		Help: "Entity store calls that failed with a connectivity error",
	}, []string{"operation"})

	storeBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "civicsolve_store_breaker_state",
		Help: "Store circuit breaker state (0 closed, 1 open, 2 half-open)",
	})
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func ObserveComplaintCreated(category string) {
	complaintsCreated.WithLabelValues(category).Inc()
}

func ObserveTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func ObserveUpvote() {
	upvotes.Inc()
}

func ObserveEscalation() {
	escalations.Inc()
}

// ObserveNotification records one delivery attempt outcome; result is "sent", "failed" or "dropped".
func ObserveNotification(channel, result string) {
	notifications.WithLabelValues(channel, result).Inc()
}

func ObserveStoreFailure(operation string) {
	storeFailures.WithLabelValues(operation).Inc()
}

func SetStoreBreakerState(state int) {
	storeBreakerState.Set(float64(state))
}
