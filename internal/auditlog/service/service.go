package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/tracer"
	dErrors "auditfeed/pkg/domain-errors"
)

// ReportRequest selects what to retrieve. A zero Window means no time bounds.
type ReportRequest struct {
	Category models.Category
	Window   models.TimeWindow
}

// Validate rejects configuration errors before anything touches the network.
func (r ReportRequest) Validate() error {
	if !r.Category.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown content type %q", r.Category)
	}
	return r.Window.Validate()
}

// Service runs the report pipeline: ensure subscription, list content,
// fetch records.
type Service struct {
	activator    *Activator
	lister       *Lister
	orchestrator *Orchestrator
	settings
}

// New wires the pipeline components on one Requester. publisherID tags
// subscription and listing calls; it is normally the tenant id.
func New(api Requester, publisherID string, opts ...Option) *Service {
	return &Service{
		activator:    NewActivator(api, publisherID, opts...),
		lister:       NewLister(api, publisherID, opts...),
		orchestrator: NewOrchestrator(NewFetcher(api, opts...), opts...),
		settings:     newSettings(opts),
	}
}

// Report retrieves the audit records for req as one ordered sequence. Any
// failure aborts the remaining steps and is returned unchanged.
func (s *Service) Report(ctx context.Context, req ReportRequest) (records []models.AuditRecord, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	contentType := req.Category.ContentType()
	correlationID := uuid.NewString()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, tracer.SpanReport,
		tracer.String(tracer.AttrContentType, contentType),
		tracer.String(tracer.AttrCorrelationID, correlationID),
		tracer.Bool(tracer.AttrWindowSet, req.Window.IsSet()),
	)
	defer func() {
		span.End(err)
		if s.metrics != nil {
			s.metrics.ObserveReport(contentType, err, time.Since(start))
		}
	}()

	logger := s.logger.With("correlation_id", correlationID, "content_type", contentType)
	logger.InfoContext(ctx, "start retrieving audit log report")

	if err := s.activator.EnsureActive(ctx, req.Category); err != nil {
		logger.ErrorContext(ctx, "subscription check failed", "error", err)
		return nil, err
	}

	descriptors, err := s.lister.List(ctx, req.Category, req.Window)
	if err != nil {
		logger.ErrorContext(ctx, "content listing failed", "error", err)
		return nil, err
	}

	records, err = s.orchestrator.FetchAll(ctx, descriptors)
	if err != nil {
		logger.ErrorContext(ctx, "content fetch failed", "error", err)
		return nil, err
	}

	span.SetAttributes(tracer.Int(tracer.AttrRecords, len(records)))
	logger.InfoContext(ctx, "audit log report complete",
		"descriptors", len(descriptors),
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}
