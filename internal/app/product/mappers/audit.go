// Package mappers converts ledger domain values to their api/ledger/v1 wire form
// for consumers outside the RPC transport.
package mappers

import (
	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// AuditToProto converts an audit entry to its wire form.
func AuditToProto(e *domain.AuditEntry) *pb.AuditEntry {
	return &pb.AuditEntry{
		TxID:       e.TxID,
		Actor:      string(e.Actor),
		Action:     string(e.Action),
		ProductID:  string(e.ProductID),
		Subject:    string(e.Subject),
		Details:    e.Details,
		RecordedAt: e.RecordedAt,
	}
}

// AuditListToProto converts a list of audit entries.
func AuditListToProto(entries []*domain.AuditEntry) []*pb.AuditEntry {
	out := make([]*pb.AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditToProto(e))
	}
	return out
}
