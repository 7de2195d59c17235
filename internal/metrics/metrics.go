// Package metrics exposes Prometheus instrumentation for the engine and the
// HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsTotal counts append-or-merge outcomes.
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milelog_records_total",
		Help: "Records written to the store by outcome",
	}, []string{"outcome"})

	// PredictionsTotal counts identity predictions.
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milelog_predictions_total",
		Help: "Identity predictions by outcome",
	}, []string{"outcome"})

	// RebuildRunsTotal counts identity rebuild runs.
	RebuildRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milelog_rebuild_runs_total",
		Help: "Identity rebuild runs by mode",
	}, []string{"mode"})

	// IdentitiesAssignedTotal counts identities written by rebuild.
	IdentitiesAssignedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milelog_identities_assigned_total",
		Help: "Record identities assigned by rebuild, by method",
	}, []string{"method"})

	// IngestReadingsTotal counts ingest readings by status.
	IngestReadingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milelog_ingest_readings_total",
		Help: "Ingested sources by reading status",
	}, []string{"status"})

	// TrendFitSeconds measures trend fitting latency.
	TrendFitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "milelog_trend_fit_seconds",
		Help:    "Trend fit duration in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	})

	// HTTPRequestsTotal counts API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "milelog_http_requests_total",
		Help: "API requests by method, route and status code",
	}, []string{"method", "route", "code"})

	// HTTPRequestSeconds measures API latency.
	HTTPRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "milelog_http_request_seconds",
		Help:    "API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// RecordOutcome counts one inserted or merged record.
func RecordOutcome(outcome string) {
	RecordsTotal.WithLabelValues(outcome).Inc()
}

// ObservePrediction counts one prediction attempt.
func ObservePrediction(outcome string) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRebuild counts one rebuild run.
func ObserveRebuild(dryRun bool) {
	mode := "apply"
	if dryRun {
		mode = "dry_run"
	}
	RebuildRunsTotal.WithLabelValues(mode).Inc()
}

// ObserveAssigned adds n identities assigned by method.
func ObserveAssigned(method string, n int) {
	if n > 0 {
		IdentitiesAssignedTotal.WithLabelValues(method).Add(float64(n))
	}
}

// ObserveIngest counts one reading.
func ObserveIngest(status string) {
	IngestReadingsTotal.WithLabelValues(status).Inc()
}

// ObserveFit records how long a trend fit took.
func ObserveFit(d time.Duration) {
	TrendFitSeconds.Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, route string, code int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPRequestSeconds.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
