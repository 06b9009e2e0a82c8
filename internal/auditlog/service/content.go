package service

import (
	"context"
	"fmt"
	"net/url"

	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/tracer"
	dErrors "auditfeed/pkg/domain-errors"
)

const endpointListContent = "activity/feed/subscriptions/content"

// Lister discovers content descriptors for a content type.
type Lister struct {
	api         Requester
	publisherID string
	settings
}

// NewLister creates a Lister that scopes listings to publisherID.
func NewLister(api Requester, publisherID string, opts ...Option) *Lister {
	return &Lister{api: api, publisherID: publisherID, settings: newSettings(opts)}
}

// List returns the descriptors delivered by a single listing call, in the
// order the service returned them. Follow-up pages are not requested.
func (l *Lister) List(ctx context.Context, category models.Category, window models.TimeWindow) (descriptors []models.ContentDescriptor, err error) {
	if !category.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown content type %q", category)
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	contentType := category.ContentType()

	ctx, span := l.tracer.Start(ctx, tracer.SpanListContent,
		tracer.String(tracer.AttrContentType, contentType),
		tracer.Bool(tracer.AttrWindowSet, window.IsSet()),
	)
	defer func() { span.End(err) }()

	l.logger.InfoContext(ctx, "listing audit content", "content_type", contentType, "window", window.IsSet())

	query := url.Values{
		"contentType":         {contentType},
		"PublisherIdentifier": {l.publisherID},
	}
	if window.IsSet() {
		query.Set("startTime", window.StartParam())
		query.Set("endTime", window.EndParam())
	}

	if err := l.api.Get(ctx, endpointListContent, query, &descriptors); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	if descriptors == nil {
		descriptors = []models.ContentDescriptor{}
	}

	span.SetAttributes(tracer.Int(tracer.AttrDescriptors, len(descriptors)))
	l.logger.DebugContext(ctx, "listed audit content", "content_type", contentType, "descriptors", len(descriptors))
	return descriptors, nil
}
