// Package metrics holds the Prometheus collectors shared across monu.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"monu/internal/domain"
)

var (
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monu_checks_total",
		Help: "Grammar checks by outcome",
	}, []string{"outcome"})

	OracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monu_oracle_request_duration_seconds",
		Help:    "Duration of correction oracle calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"provider"})

	HighlightUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monu_highlight_units_total",
		Help: "Annotated units emitted by kind",
	}, []string{"kind"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monu_cache_lookups_total",
		Help: "Correction cache lookups by result",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monu_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
)

// ObserveCheck records the outcome of one check.
func ObserveCheck(err error) {
	if err == nil {
		ChecksTotal.WithLabelValues("ok").Inc()
		return
	}
	ChecksTotal.WithLabelValues(string(domain.Classify(err))).Inc()
}

// ObserveHighlight records unit counts for one highlight.
func ObserveHighlight(s domain.HighlightStats) {
	HighlightUnits.WithLabelValues("plain").Add(float64(s.Plain))
	HighlightUnits.WithLabelValues("removed").Add(float64(s.Removed))
	HighlightUnits.WithLabelValues("added").Add(float64(s.Added))
	HighlightUnits.WithLabelValues("replaced").Add(float64(s.Replaced))
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
