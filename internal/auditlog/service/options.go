package service

import (
	"log/slog"
	"time"

	"auditfeed/internal/auditlog/metrics"
	"auditfeed/internal/auditlog/tracer"
)

const (
	// DefaultCap is the ceiling on descriptors fetched per report. Descriptors
	// past it are dropped without being requested.
	DefaultCap = 20

	// DefaultBatchSize is the number of descriptors fetched concurrently.
	DefaultBatchSize = 10

	// DefaultFetchTimeout bounds a single content fetch.
	DefaultFetchTimeout = 30 * time.Second
)

type settings struct {
	logger       *slog.Logger
	tracer       tracer.Tracer
	metrics      *metrics.Metrics
	cap          int
	batchSize    int
	fetchTimeout time.Duration
}

// Option configures the pipeline components.
type Option func(*settings)

func newSettings(opts []Option) settings {
	s := settings{
		logger:       slog.New(slog.DiscardHandler),
		tracer:       tracer.NewNoop(),
		cap:          DefaultCap,
		batchSize:    DefaultBatchSize,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithLogger sets the structured logger. A nil logger keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the span tracer. A nil tracer keeps the no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *settings) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics enables pipeline metrics. Without it nothing is recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithCap overrides the descriptor cap. Non-positive values are ignored.
func WithCap(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.cap = n
		}
	}
}

// WithBatchSize overrides the batch size. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithFetchTimeout overrides the per-fetch timeout. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}
