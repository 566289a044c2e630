// Package metrics constructs the metrics the application will track.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the basic namespace where all metrics are defined under.
const Namespace = "ledger"

// NewCounter creates a Counter metrics under the global namespace.
func NewCounter(name, subsystem, help string, labels []string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

// NewHistogram creates a Histogram metrics under the global namespace.
func NewHistogram(name, subsystem, help string, labels []string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{Namespace: Namespace, Subsystem: subsystem, Name: name, Help: help}, labels)
}

// This holds the set of metrics we want to track for the web service.
var (
	requests = NewCounter("requests_total", "web", "Number of requests handled.", []string{"method", "route"})
	errs     = NewCounter("errors_total", "web", "Number of requests that returned an error.", []string{"method", "route"})
	panics   = NewCounter("panics_total", "web", "Number of requests that panicked.", []string{"method", "route"})
	latency  = NewHistogram("request_seconds", "web", "Time taken to handle a request.", []string{"method", "route"})
)

// AddRequest increments the request counter for the route.
func AddRequest(method, route string) {
	requests.WithLabelValues(method, route).Inc()
}

// AddError increments the error counter for the route.
func AddError(method, route string) {
	errs.WithLabelValues(method, route).Inc()
}

// AddPanic increments the panic counter for the route.
func AddPanic(method, route string) {
	panics.WithLabelValues(method, route).Inc()
}

// ObserveLatency records how long the route took.
func ObserveLatency(method, route string, seconds float64) {
	latency.WithLabelValues(method, route).Observe(seconds)
}
