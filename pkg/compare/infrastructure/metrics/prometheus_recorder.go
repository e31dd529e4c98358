package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tigerroll/sqlcompare/pkg/compare/core/domain/model"
	metrics "github.com/tigerroll/sqlcompare/pkg/compare/core/metrics"
	"github.com/tigerroll/sqlcompare/pkg/compare/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of metrics.MetricRecorder.
// It owns its registry so several recorders can coexist in tests.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	queryDurationSeconds *prometheus.HistogramVec
	queriesTotal         *prometheus.CounterVec
	rowsTotal            *prometheus.CounterVec
	comparisonsTotal     *prometheus.CounterVec
	operationSeconds     *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		queryDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sqlcompare_query_duration_seconds",
			Help:    "Wall-clock duration of successful query executions.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}, []string{"platform"}),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlcompare_queries_total",
			Help: "Total number of query executions by platform and status.",
		}, []string{"platform", "status"}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlcompare_rows_total",
			Help: "Total number of rows fetched by platform.",
		}, []string{"platform"}),
		comparisonsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sqlcompare_comparisons_total",
			Help: "Total number of comparisons by winning platform.",
		}, []string{"winner"}),
		operationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sqlcompare_operation_duration_seconds",
			Help:    "Duration of named operations such as translate, execute and export.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	registry.MustRegister(r.queryDurationSeconds)
	registry.MustRegister(r.queriesTotal)
	registry.MustRegister(r.rowsTotal)
	registry.MustRegister(r.comparisonsTotal)
	registry.MustRegister(r.operationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// Handler returns the /metrics HTTP handler of the registry.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordQuery implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordQuery(ctx context.Context, result model.ExecutionResult) {
	platform := result.Platform.String()
	r.queriesTotal.WithLabelValues(platform, string(result.Status)).Inc()
	if result.Succeeded() {
		r.queryDurationSeconds.WithLabelValues(platform).Observe(float64(*result.ExecutionTimeMs) / 1000)
	}
	if result.RowCount != nil {
		r.rowsTotal.WithLabelValues(platform).Add(float64(*result.RowCount))
	}
}

// RecordComparison implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordComparison(ctx context.Context, report *model.ComparisonReport) {
	winner := "none"
	if report != nil && report.PerformanceWinner != nil {
		winner = string(*report.PerformanceWinner)
	}
	r.comparisonsTotal.WithLabelValues(winner).Inc()
	logger.Debugf("Metrics: comparison recorded, winner=%s", winner)
}

// RecordDuration implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
