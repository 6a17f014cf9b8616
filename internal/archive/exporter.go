// Package archive exports the audit trail as JSON Lines objects.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/light-bringer/provenance-ledger/internal/app/product/mappers"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
)

// ContentType of exported objects.
const ContentType = "application/x-ndjson"

// Source reads pages of the audit trail.
type Source interface {
	Execute(ctx context.Context, req *list_audit_entries.Request) (*list_audit_entries.Response, error)
}

// Result describes one export run.
type Result struct {
	Key   string // empty when nothing was exported
	Count int
	Next  uint64 // first TxID not included
}

// Exporter writes audit entries from a start TxID to the end of the trail as one object.
type Exporter struct {
	source Source
	writer BlobWriter
	prefix string
	logger *slog.Logger
}

// NewExporter creates an exporter writing objects under prefix.
func NewExporter(source Source, writer BlobWriter, prefix string, logger *slog.Logger) *Exporter {
	return &Exporter{source: source, writer: writer, prefix: prefix, logger: logger}
}

// ObjectKey names the object holding entries first..last.
func ObjectKey(prefix string, first, last uint64) string {
	return path.Join(prefix, fmt.Sprintf("audit-%020d-%020d.jsonl", first, last))
}

// Export writes every entry with TxID >= from.
func (e *Exporter) Export(ctx context.Context, from uint64) (*Result, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	result := &Result{Next: from}
	for {
		page, err := e.source.Execute(ctx, &list_audit_entries.Request{From: result.Next, Limit: list_audit_entries.MaxLimit})
		if err != nil {
			return nil, fmt.Errorf("failed to read audit entries from %d: %w", result.Next, err)
		}
		for _, entry := range page.Entries {
			if err := enc.Encode(mappers.AuditToProto(entry)); err != nil {
				return nil, fmt.Errorf("failed to encode audit entry %d: %w", entry.TxID, err)
			}
			result.Next = entry.TxID + 1
			result.Count++
		}
		if len(page.Entries) == 0 || result.Next >= page.Total {
			break
		}
	}

	if result.Count == 0 {
		e.logger.Info("no audit entries to export", slog.Uint64("from", from))
		return result, nil
	}

	result.Key = ObjectKey(e.prefix, from, result.Next-1)
	if err := e.writer.Put(ctx, result.Key, bytes.NewReader(buf.Bytes()), ContentType); err != nil {
		return nil, err
	}

	e.logger.Info("audit entries exported",
		slog.String("key", result.Key),
		slog.Int("count", result.Count),
	)
	return result, nil
}
