package request

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
}

// NewMetrics registers the HTTP metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		EndpointLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "auditfeed_http_request_duration_seconds",
			Help:    "Latency of report server endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
	}
}

func (m *Metrics) ObserveEndpointLatency(endpoint string, status int, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(durationSeconds)
}
