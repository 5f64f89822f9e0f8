// Package telemetry holds the Prometheus metrics exported on /metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "buzz"

var (
	Ticks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Clock ticks evaluated by the scheduler.",
	})

	// Triggers counts alert sessions started, labelled by source ("schedule" or "test").
	Triggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triggers_total",
		Help:      "Alert sessions started.",
	}, []string{"source"})

	Suppressed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triggers_suppressed_total",
		Help:      "Triggers ignored because an alert session was already active.",
	})

	SessionActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_active",
		Help:      "1 while an alert session is flashing.",
	})

	ConfiguredTimes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "configured_times",
		Help:      "Number of configured buzz times.",
	})

	PlayFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "play_failures_total",
		Help:      "Alert playbacks that failed.",
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Failed store operations.",
	}, []string{"op"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Connected presentation clients.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler exposes metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
