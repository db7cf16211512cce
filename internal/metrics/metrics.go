package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	remoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookpedia",
		Name:      "remote_calls_total",
		Help:      "Total number of catalog API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	remoteCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bookpedia",
		Name:      "remote_call_duration_seconds",
		Help:      "Histogram of catalog API call durations in seconds by endpoint",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms up to ~25s
	}, []string{"endpoint"})

	searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookpedia",
		Name:      "searches_total",
		Help:      "Total number of searches by final state",
	}, []string{"state"})

	favouritesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bookpedia",
		Name:      "favourites_total",
		Help:      "Current number of favourite books",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(remoteCalls, remoteCallDuration, searches, favouritesGauge)
	})
}

// ObserveRemoteCall records one catalog call. Outcome is "ok" or the error kind.
func ObserveRemoteCall(endpoint, outcome string, d time.Duration) {
	remoteCalls.WithLabelValues(endpoint, outcome).Inc()
	remoteCallDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Search lifecycle helpers
func IncSearchStarted()   { searches.WithLabelValues("started").Inc() }
func IncSearchSucceeded() { searches.WithLabelValues("succeeded").Inc() }
func IncSearchFailed()    { searches.WithLabelValues("failed").Inc() }
func IncSearchCanceled()  { searches.WithLabelValues("canceled").Inc() }

func SetFavourites(n int) { favouritesGauge.Set(float64(n)) }
