// Package relay publishes the audit trail to downstream consumers.
//
// The relay polls the ledger from a cursor and hands each batch of audit
// entries to a Sink. Sinks must tolerate re-publishing an entry: after a
// restart the relay resumes from its configured start position.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
)

// Sink receives audit entries in TxID order.
type Sink interface {
	Name() string
	Publish(ctx context.Context, entries []*domain.AuditEntry) error
	Close() error
}

// Source reads pages of the audit trail.
type Source interface {
	Execute(ctx context.Context, req *list_audit_entries.Request) (*list_audit_entries.Response, error)
}

// Recorder counts published entries per sink.
type Recorder interface {
	ObservePublished(sink string, n int)
}

// Relay moves audit entries from a Source to a Sink.
type Relay struct {
	source   Source
	sink     Sink
	recorder Recorder
	logger   *slog.Logger

	interval  time.Duration
	batchSize int
	cursor    uint64
}

// Option configures a Relay.
type Option func(*Relay)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

// WithBatchSize sets the max entries read per poll.
func WithBatchSize(n int) Option {
	return func(r *Relay) { r.batchSize = n }
}

// WithStart sets the first TxID to publish.
func WithStart(txID uint64) Option {
	return func(r *Relay) { r.cursor = txID }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Relay) { r.recorder = rec }
}

// New creates a relay reading from source and publishing to sink.
func New(source Source, sink Sink, logger *slog.Logger, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		sink:      sink,
		logger:    logger,
		interval:  time.Second,
		batchSize: list_audit_entries.DefaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cursor returns the next TxID to publish.
func (r *Relay) Cursor() uint64 { return r.cursor }

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("audit relay started",
		slog.String("sink", r.sink.Name()),
		slog.Uint64("from", r.cursor),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("audit relay poll failed", slog.Uint64("cursor", r.cursor), slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Drain publishes every entry at or after the cursor and returns how many were sent.
// On error the cursor stays at the first unpublished batch.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	published := 0
	for {
		page, err := r.source.Execute(ctx, &list_audit_entries.Request{From: r.cursor, Limit: r.batchSize})
		if err != nil {
			return published, fmt.Errorf("failed to read audit entries from %d: %w", r.cursor, err)
		}
		if len(page.Entries) == 0 {
			return published, nil
		}

		if err := r.sink.Publish(ctx, page.Entries); err != nil {
			return published, fmt.Errorf("failed to publish to %s: %w", r.sink.Name(), err)
		}

		r.cursor = page.Entries[len(page.Entries)-1].TxID + 1
		published += len(page.Entries)
		if r.recorder != nil {
			r.recorder.ObservePublished(r.sink.Name(), len(page.Entries))
		}
		r.logger.Debug("audit entries published",
			slog.String("sink", r.sink.Name()),
			slog.Int("count", len(page.Entries)),
			slog.Uint64("cursor", r.cursor),
		)

		if r.cursor >= page.Total {
			return published, nil
		}
	}
}
