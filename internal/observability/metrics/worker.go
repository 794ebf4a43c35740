package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	deliverTotal    *prometheus.CounterVec
	deliverDuration *prometheus.HistogramVec
	deliverInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	deliverTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atlas",
			Subsystem: "notifier",
			Name:      "deliver_total",
			Help:      "Total processed derivation events by status.",
		},
		[]string{"service", "status"},
	)
	deliverDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atlas",
			Subsystem: "notifier",
			Name:      "deliver_duration_seconds",
			Help:      "Notification persistence duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	deliverInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "atlas",
			Subsystem: "notifier",
			Name:      "deliver_in_flight",
			Help:      "Number of in-flight notification deliveries.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atlas",
			Subsystem: "notifier",
			Name:      "queue_lag_seconds",
			Help:      "Delay between derivation commit and notification processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(deliverTotal, deliverDuration, deliverInFlight, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		service:         service,
		deliverTotal:    deliverTotal,
		deliverDuration: deliverDuration,
		deliverInFlight: deliverInFlight,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDelivery() {
	m.deliverInFlight.Inc()
}

func (m *WorkerMetrics) FinishDelivery(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.deliverInFlight.Dec()
	m.deliverTotal.WithLabelValues(m.service, status).Inc()
	m.deliverDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(derivedAt time.Time) {
	if derivedAt.IsZero() {
		return
	}
	lag := time.Since(derivedAt)
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
