// Package tracer provides a lightweight tracing abstraction for the audit log
// pipeline.
//
// The pipeline emits spans through this interface without importing
// OpenTelemetry directly, so tests can run with NoopTracer and the binaries can
// plug in OTelTracer backed by whatever provider is installed globally.
//
// Span layout for one report:
//
//	auditlog.report
//	├── auditlog.subscription.ensure
//	├── auditlog.content.list
//	└── auditlog.fetch_all
//	    └── auditlog.batch (one per batch)
//	        └── auditlog.content.fetch (one per descriptor)
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use,
// since descriptor fetches within a batch start spans from many goroutines.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashContentURI shortens a content URI to a stable fingerprint. Content URIs
// embed tenant and blob identifiers that should not end up in trace backends.
func HashContentURI(uri string) string {
	if uri == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(uri))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the audit log pipeline.
const (
	SpanReport             = "auditlog.report"
	SpanEnsureSubscription = "auditlog.subscription.ensure"
	SpanListContent        = "auditlog.content.list"
	SpanFetchAll           = "auditlog.fetch_all"
	SpanBatch              = "auditlog.batch"
	SpanFetchContent       = "auditlog.content.fetch"
)

// Attribute keys used by the audit log pipeline.
const (
	AttrContentType   = "content_type"
	AttrCorrelationID = "correlation_id"
	AttrContentURI    = "content_uri_hash"
	AttrWindowSet     = "window.set"
	AttrDescriptors   = "descriptors"
	AttrSkipped       = "descriptors.skipped"
	AttrBatch         = "batch"
	AttrBatches       = "batches"
	AttrRecords       = "records"
	AttrStarted       = "subscription.started"
)

// Event names used by the audit log pipeline.
const (
	EventSubscriptionStarted = "subscription.started"
	EventCapApplied          = "cap.applied"
)
