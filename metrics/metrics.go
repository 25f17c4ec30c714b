package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "comanda"

var (
	// Request metrics
	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)

	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Domain metrics
	CommandsOpenedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_opened_total",
		Help:      "Total number of commands opened",
	})

	CommandsClosedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_closed_total",
			Help:      "Total number of commands closed",
		},
		[]string{"mode"}, // manual | auto
	)

	PaymentsRecordedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Total number of payments recorded",
		},
		[]string{"payment_type"},
	)
)

// RecordCommandClosed incrementa o contador de fechamento de comandas.
func RecordCommandClosed(mode string) {
	CommandsClosedCounter.WithLabelValues(mode).Inc()
}
