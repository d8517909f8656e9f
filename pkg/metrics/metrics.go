package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)
	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "places_ingest_runs_total", Help: "Places ingestion runs by outcome"},
		[]string{"outcome"},
	)
	IngestedPlaces = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "places_ingested_total", Help: "Places written by ingestion"},
		[]string{"result"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight, IngestRuns, IngestedPlaces)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
