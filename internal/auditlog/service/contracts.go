package service

import (
	"context"
	"net/url"

	"auditfeed/internal/auditlog/models"
)

// Requester is the management API capability the pipeline depends on.
// Relative endpoints are tenant-scoped; absolute URLs are used as given.
type Requester interface {
	Get(ctx context.Context, endpoint string, query url.Values, out any) error
	Post(ctx context.Context, endpoint string, query url.Values, out any) error
}

// RecordFetcher resolves one content URI into its audit records.
type RecordFetcher interface {
	Fetch(ctx context.Context, contentURI string) ([]models.AuditRecord, error)
}
