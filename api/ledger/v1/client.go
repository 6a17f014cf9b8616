package ledgerv1

import (
	"context"

	"google.golang.org/grpc"
)

// LedgerServiceClient is the client API for LedgerService.
type LedgerServiceClient interface {
	RegisterProduct(ctx context.Context, in *RegisterProductRequest, opts ...grpc.CallOption) (*RegisterProductReply, error)
	UpdateProductStatus(ctx context.Context, in *UpdateProductStatusRequest, opts ...grpc.CallOption) (*UpdateProductStatusReply, error)
	AssignRole(ctx context.Context, in *AssignRoleRequest, opts ...grpc.CallOption) (*AssignRoleReply, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductReply, error)
	GetStatusHistory(ctx context.Context, in *GetStatusHistoryRequest, opts ...grpc.CallOption) (*GetStatusHistoryReply, error)
	ListStatusHistory(ctx context.Context, in *ListStatusHistoryRequest, opts ...grpc.CallOption) (*ListStatusHistoryReply, error)
	GetAuditEntry(ctx context.Context, in *GetAuditEntryRequest, opts ...grpc.CallOption) (*GetAuditEntryReply, error)
	ListAuditEntries(ctx context.Context, in *ListAuditEntriesRequest, opts ...grpc.CallOption) (*ListAuditEntriesReply, error)
	GetRole(ctx context.Context, in *GetRoleRequest, opts ...grpc.CallOption) (*GetRoleReply, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient creates a client that sends JSON-encoded messages over cc.
func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc: cc}
}

func invoke[Reply any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Reply, error) {
	out := new(Reply)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) RegisterProduct(ctx context.Context, in *RegisterProductRequest, opts ...grpc.CallOption) (*RegisterProductReply, error) {
	return invoke[RegisterProductReply](ctx, c.cc, LedgerService_RegisterProduct_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) UpdateProductStatus(ctx context.Context, in *UpdateProductStatusRequest, opts ...grpc.CallOption) (*UpdateProductStatusReply, error) {
	return invoke[UpdateProductStatusReply](ctx, c.cc, LedgerService_UpdateProductStatus_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) AssignRole(ctx context.Context, in *AssignRoleRequest, opts ...grpc.CallOption) (*AssignRoleReply, error) {
	return invoke[AssignRoleReply](ctx, c.cc, LedgerService_AssignRole_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*GetProductReply, error) {
	return invoke[GetProductReply](ctx, c.cc, LedgerService_GetProduct_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetStatusHistory(ctx context.Context, in *GetStatusHistoryRequest, opts ...grpc.CallOption) (*GetStatusHistoryReply, error) {
	return invoke[GetStatusHistoryReply](ctx, c.cc, LedgerService_GetStatusHistory_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ListStatusHistory(ctx context.Context, in *ListStatusHistoryRequest, opts ...grpc.CallOption) (*ListStatusHistoryReply, error) {
	return invoke[ListStatusHistoryReply](ctx, c.cc, LedgerService_ListStatusHistory_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetAuditEntry(ctx context.Context, in *GetAuditEntryRequest, opts ...grpc.CallOption) (*GetAuditEntryReply, error) {
	return invoke[GetAuditEntryReply](ctx, c.cc, LedgerService_GetAuditEntry_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ListAuditEntries(ctx context.Context, in *ListAuditEntriesRequest, opts ...grpc.CallOption) (*ListAuditEntriesReply, error) {
	return invoke[ListAuditEntriesReply](ctx, c.cc, LedgerService_ListAuditEntries_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetRole(ctx context.Context, in *GetRoleRequest, opts ...grpc.CallOption) (*GetRoleReply, error) {
	return invoke[GetRoleReply](ctx, c.cc, LedgerService_GetRole_FullMethodName, in, opts)
}
