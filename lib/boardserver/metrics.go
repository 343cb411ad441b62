// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "qaboard"

// metrics holds the server's Prometheus collectors. Each Server has
// its own registry so several can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	pushClients      prometheus.Gauge
	pushBroadcasts   *prometheus.CounterVec
	pushDroppedSends prometheus.Counter
}

func newMetrics() *metrics {
	collector := &metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		pushClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "push_clients",
			Help:      "Number of connected push channel clients",
		}),
		pushBroadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "push_broadcasts_total",
				Help:      "Events broadcast on the push channel, by type",
			},
			[]string{"type"},
		),
		pushDroppedSends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "push_dropped_sends_total",
			Help:      "Frames not delivered because a client's send buffer was full",
		}),
	}
	collector.registry.MustRegister(
		collector.httpRequests,
		collector.httpDuration,
		collector.pushClients,
		collector.pushBroadcasts,
		collector.pushDroppedSends,
	)
	return collector
}

func (collector *metrics) handler() http.Handler {
	return promhttp.HandlerFor(collector.registry, promhttp.HandlerOpts{})
}

// instrument records request counts and durations by route pattern.
func (collector *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		collector.httpRequests.WithLabelValues(request.Method, route, strconv.Itoa(status)).Inc()
		collector.httpDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}
