package service

import (
	"context"
	"fmt"
	"net/url"

	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/tracer"
	dErrors "auditfeed/pkg/domain-errors"
)

const (
	endpointListSubscriptions = "activity/feed/subscriptions/list"
	endpointStartSubscription = "activity/feed/subscriptions/start"
)

// Activator makes sure a feed subscription exists for a content type.
type Activator struct {
	api         Requester
	publisherID string
	settings
}

// NewActivator creates an Activator that tags start requests with publisherID.
func NewActivator(api Requester, publisherID string, opts ...Option) *Activator {
	return &Activator{api: api, publisherID: publisherID, settings: newSettings(opts)}
}

// EnsureActive lists the tenant's subscriptions and starts one for category
// when none is listed. A listed subscription counts as active regardless of
// its status field, so repeated calls never issue a second start.
func (a *Activator) EnsureActive(ctx context.Context, category models.Category) (err error) {
	if !category.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown content type %q", category)
	}
	contentType := category.ContentType()

	ctx, span := a.tracer.Start(ctx, tracer.SpanEnsureSubscription, tracer.String(tracer.AttrContentType, contentType))
	defer func() { span.End(err) }()

	a.logger.InfoContext(ctx, "checking whether subscription is active", "content_type", contentType)

	var subscriptions []models.Subscription
	if err := a.api.Get(ctx, endpointListSubscriptions, nil, &subscriptions); err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	for _, sub := range subscriptions {
		if sub.ContentType == contentType {
			a.logger.DebugContext(ctx, "subscription already active",
				"content_type", contentType,
				"status", sub.Status,
			)
			span.SetAttributes(tracer.Bool(tracer.AttrStarted, false))
			return nil
		}
	}

	a.logger.InfoContext(ctx, "starting subscription since subscription is not active for the content type",
		"content_type", contentType,
	)
	query := url.Values{
		"contentType":         {contentType},
		"PublisherIdentifier": {a.publisherID},
	}
	if err := a.api.Post(ctx, endpointStartSubscription, query, nil); err != nil {
		return fmt.Errorf("start subscription: %w", err)
	}

	span.SetAttributes(tracer.Bool(tracer.AttrStarted, true))
	span.AddEvent(tracer.EventSubscriptionStarted)
	if a.metrics != nil {
		a.metrics.IncrementSubscriptionsStarted(contentType)
	}
	return nil
}
