// Package metrics provides Prometheus metrics for the audit log pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all audit log pipeline metrics.
type Metrics struct {
	// Management API calls
	RequestsTotal          *prometheus.CounterVec   // Calls by method and status class
	RequestDurationSeconds *prometheus.HistogramVec // Call latency by method

	// Pipeline
	ReportsTotal          *prometheus.CounterVec // Reports by content type and outcome
	ReportDurationSeconds prometheus.Histogram
	SubscriptionsStarted  *prometheus.CounterVec // Start calls issued by content type
	BatchesTotal          prometheus.Counter
	DescriptorsFetched    prometheus.Counter
	DescriptorsSkipped    prometheus.Counter // Dropped past the descriptor cap
	RecordsReturned       prometheus.Counter
}

// New registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers all metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditfeed_management_api_requests_total",
			Help: "Total number of management API calls by method and status class",
		}, []string{"method", "status"}),

		RequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auditfeed_management_api_request_duration_seconds",
			Help:    "Duration of management API calls by method",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),

		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditfeed_reports_total",
			Help: "Total number of audit reports by content type and outcome",
		}, []string{"content_type", "outcome"}),

		ReportDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditfeed_report_duration_seconds",
			Help:    "End-to-end duration of audit reports",
			Buckets: prometheus.DefBuckets,
		}),

		SubscriptionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auditfeed_subscriptions_started_total",
			Help: "Total number of feed subscriptions started by content type",
		}, []string{"content_type"}),

		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditfeed_batches_total",
			Help: "Total number of descriptor batches fetched",
		}),

		DescriptorsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditfeed_descriptors_fetched_total",
			Help: "Total number of content descriptors fetched",
		}),

		DescriptorsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditfeed_descriptors_skipped_total",
			Help: "Total number of content descriptors dropped by the descriptor cap",
		}),

		RecordsReturned: factory.NewCounter(prometheus.CounterOpts{
			Name: "auditfeed_records_returned_total",
			Help: "Total number of audit records returned",
		}),
	}
}

// ObserveRequest records one management API call. A zero status means no
// response was received.
func (m *Metrics) ObserveRequest(method string, statusCode int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, statusClass(statusCode)).Inc()
	m.RequestDurationSeconds.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveReport records the outcome of one report.
func (m *Metrics) ObserveReport(contentType string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.ReportsTotal.WithLabelValues(contentType, outcome).Inc()
	m.ReportDurationSeconds.Observe(duration.Seconds())
}

// IncrementSubscriptionsStarted records a start call for contentType.
func (m *Metrics) IncrementSubscriptionsStarted(contentType string) {
	m.SubscriptionsStarted.WithLabelValues(contentType).Inc()
}

// ObserveBatch records one fully fetched batch.
func (m *Metrics) ObserveBatch(descriptors, records int) {
	m.BatchesTotal.Inc()
	m.DescriptorsFetched.Add(float64(descriptors))
	m.RecordsReturned.Add(float64(records))
}

// AddSkipped records descriptors dropped by the cap.
func (m *Metrics) AddSkipped(n int) {
	if n > 0 {
		m.DescriptorsSkipped.Add(float64(n))
	}
}

func statusClass(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}
