package service

import (
	"context"

	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/tracer"
)

// Fetcher retrieves the records behind one content URI.
type Fetcher struct {
	api Requester
	settings
}

// NewFetcher creates a Fetcher. Each fetch runs under the configured timeout.
func NewFetcher(api Requester, opts ...Option) *Fetcher {
	return &Fetcher{api: api, settings: newSettings(opts)}
}

// Fetch returns the decoded records verbatim. Failures, including the
// per-fetch timeout expiring, are returned as the client reported them.
func (f *Fetcher) Fetch(ctx context.Context, contentURI string) (records []models.AuditRecord, err error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	ctx, span := f.tracer.Start(ctx, tracer.SpanFetchContent, tracer.String(tracer.AttrContentURI, tracer.HashContentURI(contentURI)))
	defer func() { span.End(err) }()

	if err := f.api.Get(ctx, contentURI, nil, &records); err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Int(tracer.AttrRecords, len(records)))
	return records, nil
}

var _ RecordFetcher = (*Fetcher)(nil)
