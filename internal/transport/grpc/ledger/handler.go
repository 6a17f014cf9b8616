package ledger

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/app/product/mappers"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_audit_entry"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_product"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_role"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/get_status_history"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_audit_entries"
	"github.com/light-bringer/provenance-ledger/internal/app/product/queries/list_status_history"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/assign_role"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/register_product"
	"github.com/light-bringer/provenance-ledger/internal/app/product/usecases/update_status"
	"github.com/light-bringer/provenance-ledger/internal/platform/auth"
)

// Commands groups the mutating use cases.
type Commands struct {
	RegisterProduct *register_product.Interactor
	UpdateStatus    *update_status.Interactor
	AssignRole      *assign_role.Interactor
}

// Queries groups the read-only use cases.
type Queries struct {
	GetProduct        *get_product.Query
	GetStatusHistory  *get_status_history.Query
	ListStatusHistory *list_status_history.Query
	GetAuditEntry     *get_audit_entry.Query
	ListAuditEntries  *list_audit_entries.Query
	GetRole           *get_role.Query
}

// Handler implements the gRPC LedgerService interface.
// It's a thin coordinator that delegates to use cases and queries.
type Handler struct {
	pb.UnimplementedLedgerServiceServer

	commands Commands
	queries  Queries
}

// NewHandler creates a new gRPC ledger handler.
func NewHandler(commands Commands, queries Queries) *Handler {
	return &Handler{
		commands: commands,
		queries:  queries,
	}
}

// caller returns the identity verified by the auth interceptor.
func caller(ctx context.Context) (string, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "caller identity required")
	}
	return string(identity), nil
}

// RegisterProduct registers a new product for the calling manufacturer.
func (h *Handler) RegisterProduct(ctx context.Context, req *pb.RegisterProductRequest) (*pb.RegisterProductReply, error) {
	identity, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.commands.RegisterProduct.Execute(ctx, &register_product.Request{
		Caller:    identity,
		ProductID: req.ProductID,
		Location:  req.Location,
	})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}

	return &pb.RegisterProductReply{
		Product: ProductToProto(&resp.Product),
		History: HistoryToProto(&resp.History),
		TxID:    resp.TxID,
	}, nil
}

// UpdateProductStatus moves a product along its lifecycle.
func (h *Handler) UpdateProductStatus(ctx context.Context, req *pb.UpdateProductStatusRequest) (*pb.UpdateProductStatusReply, error) {
	identity, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.commands.UpdateStatus.Execute(ctx, &update_status.Request{
		Caller:     identity,
		ProductID:  req.ProductID,
		NewStatus:  req.Status,
		Reason:     req.Reason,
		Location:   req.Location,
		TransferTo: req.TransferTo,
	})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}

	return &pb.UpdateProductStatusReply{
		Product: ProductToProto(&resp.Product),
		History: HistoryToProto(&resp.History),
		TxID:    resp.TxID,
	}, nil
}

// AssignRole assigns a role on behalf of the system owner.
func (h *Handler) AssignRole(ctx context.Context, req *pb.AssignRoleRequest) (*pb.AssignRoleReply, error) {
	identity, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.commands.AssignRole.Execute(ctx, &assign_role.Request{
		Caller:   identity,
		Identity: req.Identity,
		Role:     req.Role,
	})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}

	return &pb.AssignRoleReply{
		Assignment: RoleAssignmentToProto(&resp.Assignment),
		TxID:       resp.TxID,
	}, nil
}

// GetProduct returns a product's current record.
func (h *Handler) GetProduct(ctx context.Context, req *pb.GetProductRequest) (*pb.GetProductReply, error) {
	record, err := h.queries.GetProduct.Execute(ctx, &get_product.Request{ProductID: req.ProductID})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}
	return &pb.GetProductReply{Product: ProductToProto(record)}, nil
}

// GetStatusHistory returns one status history entry.
func (h *Handler) GetStatusHistory(ctx context.Context, req *pb.GetStatusHistoryRequest) (*pb.GetStatusHistoryReply, error) {
	entry, err := h.queries.GetStatusHistory.Execute(ctx, &get_status_history.Request{
		ProductID: req.ProductID,
		Sequence:  req.Sequence,
	})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}
	return &pb.GetStatusHistoryReply{Entry: HistoryToProto(entry)}, nil
}

// ListStatusHistory returns a product's full status history.
func (h *Handler) ListStatusHistory(ctx context.Context, req *pb.ListStatusHistoryRequest) (*pb.ListStatusHistoryReply, error) {
	entries, err := h.queries.ListStatusHistory.Execute(ctx, &list_status_history.Request{ProductID: req.ProductID})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}
	return &pb.ListStatusHistoryReply{Entries: HistoryListToProto(entries)}, nil
}

// GetAuditEntry returns one audit entry.
func (h *Handler) GetAuditEntry(ctx context.Context, req *pb.GetAuditEntryRequest) (*pb.GetAuditEntryReply, error) {
	entry, err := h.queries.GetAuditEntry.Execute(ctx, &get_audit_entry.Request{TxID: req.TxID})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}
	return &pb.GetAuditEntryReply{Entry: mappers.AuditToProto(entry)}, nil
}

// ListAuditEntries returns a page of the audit trail.
func (h *Handler) ListAuditEntries(ctx context.Context, req *pb.ListAuditEntriesRequest) (*pb.ListAuditEntriesReply, error) {
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	resp, err := h.queries.ListAuditEntries.Execute(ctx, &list_audit_entries.Request{
		From:  req.From,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}
	return &pb.ListAuditEntriesReply{
		Entries: mappers.AuditListToProto(resp.Entries),
		Total:   resp.Total,
	}, nil
}

// GetRole returns an identity's role.
func (h *Handler) GetRole(ctx context.Context, req *pb.GetRoleRequest) (*pb.GetRoleReply, error) {
	role, err := h.queries.GetRole.Execute(ctx, &get_role.Request{Identity: req.Identity})
	if err != nil {
		return nil, mapDomainErrorToGRPC(err)
	}
	return &pb.GetRoleReply{Identity: req.Identity, Role: string(role)}, nil
}
