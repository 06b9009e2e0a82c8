package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/tracer"
)

// Orchestrator turns a descriptor listing into one flat record sequence.
//
// At most cap descriptors are fetched, in batches of batchSize. Batches run one
// after another; descriptors within a batch are fetched concurrently. The
// output follows descriptor order regardless of completion order, and any
// failed fetch fails the whole call with no partial result.
type Orchestrator struct {
	fetcher RecordFetcher
	settings
}

// NewOrchestrator creates an Orchestrator using fetcher for single descriptors.
func NewOrchestrator(fetcher RecordFetcher, opts ...Option) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, settings: newSettings(opts)}
}

// Cap returns the descriptor ceiling.
func (o *Orchestrator) Cap() int { return o.cap }

// BatchSize returns the number of descriptors fetched concurrently.
func (o *Orchestrator) BatchSize() int { return o.batchSize }

// FetchAll fetches the records behind descriptors[:min(len, cap)].
func (o *Orchestrator) FetchAll(ctx context.Context, descriptors []models.ContentDescriptor) (records []models.AuditRecord, err error) {
	effective := min(len(descriptors), o.cap)
	skipped := len(descriptors) - effective
	batches := partition(descriptors[:effective], o.batchSize)

	ctx, span := o.tracer.Start(ctx, tracer.SpanFetchAll,
		tracer.Int(tracer.AttrDescriptors, effective),
		tracer.Int(tracer.AttrBatches, len(batches)),
	)
	defer func() { span.End(err) }()

	if skipped > 0 {
		o.logger.DebugContext(ctx, "descriptor cap applied",
			"listed", len(descriptors),
			"cap", o.cap,
			"skipped", skipped,
		)
		span.AddEvent(tracer.EventCapApplied, tracer.Int(tracer.AttrSkipped, skipped))
		if o.metrics != nil {
			o.metrics.AddSkipped(skipped)
		}
	}

	o.logger.InfoContext(ctx, "generating audit records in batches",
		"descriptors", effective,
		"batches", len(batches),
		"batch_size", o.batchSize,
	)

	// Only this loop appends to the accumulator, after each batch has joined.
	records = make([]models.AuditRecord, 0)
	for i, batch := range batches {
		o.logger.InfoContext(ctx, "generating audit records for batch",
			"batch", i+1,
			"batches", len(batches),
			"descriptors", len(batch),
		)

		batchRecords, err := o.fetchBatch(ctx, i+1, batch)
		if err != nil {
			o.logger.WarnContext(ctx, "batch failed", "batch", i+1, "error", err)
			return nil, err
		}
		records = append(records, batchRecords...)

		if o.metrics != nil {
			o.metrics.ObserveBatch(len(batch), len(batchRecords))
		}
	}

	span.SetAttributes(tracer.Int(tracer.AttrRecords, len(records)))
	return records, nil
}

// fetchBatch fetches every descriptor of one batch concurrently. Each
// goroutine writes only its own slot; slots are concatenated after the join.
func (o *Orchestrator) fetchBatch(ctx context.Context, number int, batch []models.ContentDescriptor) (records []models.AuditRecord, err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanBatch,
		tracer.Int(tracer.AttrBatch, number),
		tracer.Int(tracer.AttrDescriptors, len(batch)),
	)
	defer func() { span.End(err) }()

	g, gctx := errgroup.WithContext(ctx)
	slots := make([][]models.AuditRecord, len(batch))

	for i, d := range batch {
		g.Go(func() error {
			recs, err := o.fetcher.Fetch(gctx, d.ContentURI)
			if err != nil {
				return fmt.Errorf("fetch content %s: %w", d.ContentID, err)
			}
			slots[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	records = make([]models.AuditRecord, 0, total)
	for _, s := range slots {
		records = append(records, s...)
	}
	span.SetAttributes(tracer.Int(tracer.AttrRecords, len(records)))
	return records, nil
}

// partition splits descriptors into consecutive batches of at most size,
// preserving order. The last batch may be smaller.
func partition(descriptors []models.ContentDescriptor, size int) [][]models.ContentDescriptor {
	if len(descriptors) == 0 {
		return nil
	}
	batches := make([][]models.ContentDescriptor, 0, (len(descriptors)+size-1)/size)
	for start := 0; start < len(descriptors); start += size {
		end := min(start+size, len(descriptors))
		batches = append(batches, descriptors[start:end])
	}
	return batches
}
