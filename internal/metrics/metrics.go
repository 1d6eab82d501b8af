// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"country-weather/internal/httpclient"
)

const namespace = "country_weather"

// Upstream names used as label values.
const (
	UpstreamCountries = "countries"
	UpstreamWeather   = "weather"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	Popups           *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound API calls by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of outbound API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		Popups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "popups_total",
			Help:      "Popups produced by list clicks, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.UpstreamRequests, m.UpstreamDuration, m.HTTPRequests, m.Popups)
	return m
}

// ObserveUpstream records one outbound call that started at start.
func (m *Metrics) ObserveUpstream(upstream string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	m.UpstreamRequests.WithLabelValues(upstream, outcome(err)).Inc()
}

// ObservePopup counts a popup of the given kind.
func (m *Metrics) ObservePopup(kind string) {
	if m == nil {
		return
	}
	m.Popups.WithLabelValues(kind).Inc()
}

// ObserveHTTP counts an inbound request.
func (m *Metrics) ObserveHTTP(route, method, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
}

func outcome(err error) string {
	var statusErr *httpclient.StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return "http_status"
	default:
		return "error"
	}
}
