package ledger

import (
	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/app/product/domain"
)

// ToProto converters are shared with the HTTP transport.

// ProductToProto converts a domain ProductRecord to its wire form.
func ProductToProto(r *domain.ProductRecord) *pb.Product {
	return &pb.Product{
		ProductID:     string(r.ProductID),
		Manufacturer:  string(r.Manufacturer),
		CreatedAt:     r.CreatedAt,
		CurrentOwner:  string(r.CurrentOwner),
		CurrentStatus: string(r.CurrentStatus),
		Verified:      r.Verified,
		UpdateCount:   r.UpdateCount,
	}
}

// HistoryToProto converts a status history entry to its wire form.
func HistoryToProto(e *domain.StatusHistoryEntry) *pb.StatusHistoryEntry {
	return &pb.StatusHistoryEntry{
		ProductID: string(e.ProductID),
		Sequence:  e.Sequence,
		Status:    string(e.Status),
		Timestamp: e.Timestamp,
		ChangedBy: string(e.ChangedBy),
		Reason:    string(e.Reason),
		Location:  string(e.Location),
	}
}

// HistoryListToProto converts a list of history entries.
func HistoryListToProto(entries []*domain.StatusHistoryEntry) []*pb.StatusHistoryEntry {
	out := make([]*pb.StatusHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryToProto(e))
	}
	return out
}

// RoleAssignmentToProto converts a registry row to its wire form.
func RoleAssignmentToProto(a *domain.RoleAssignment) *pb.RoleAssignment {
	return &pb.RoleAssignment{
		Identity:   string(a.Identity),
		Role:       string(a.Role),
		AssignedBy: string(a.AssignedBy),
		AssignedAt: a.AssignedAt,
	}
}
