/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Metrics holds the pass adapter collectors.
type Metrics struct {
	gatherer           prometheus.Gatherer
	passGenerated      *prometheus.CounterVec
	generationDuration prometheus.Histogram
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New registers the collectors with a fresh registry.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors with reg and serves them from gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		gatherer: gatherer,
		passGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pass_generated_total",
			Help: "Pass generation attempts by result.",
		}, []string{"result"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pass_generation_duration_seconds",
			Help:    "Pass generation latency.",
			Buckets: prometheus.DefBuckets,
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	for _, c := range []prometheus.Collector{m.passGenerated, m.generationDuration, m.requestsTotal, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector : %w", err)
		}
	}

	return m, nil
}

// ObserveGeneration records the outcome of one pass generation.
func (m *Metrics) ObserveGeneration(result string, d time.Duration) {
	m.passGenerated.WithLabelValues(result).Inc()
	m.generationDuration.Observe(d.Seconds())
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

		next.ServeHTTP(sw, r)

		labels := []string{r.Method, routeTemplate(r), strconv.Itoa(sw.code)}
		m.requestsTotal.WithLabelValues(labels...).Inc()
		m.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}

	tpl, err := route.GetPathTemplate()
	if err != nil {
		return unmatchedRoute
	}

	return tpl
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
