package ledgerv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "provenance.ledger.v1.LedgerService"

// Full method names.
const (
	LedgerService_RegisterProduct_FullMethodName     = "/" + ServiceName + "/RegisterProduct"
	LedgerService_UpdateProductStatus_FullMethodName = "/" + ServiceName + "/UpdateProductStatus"
	LedgerService_AssignRole_FullMethodName          = "/" + ServiceName + "/AssignRole"
	LedgerService_GetProduct_FullMethodName          = "/" + ServiceName + "/GetProduct"
	LedgerService_GetStatusHistory_FullMethodName    = "/" + ServiceName + "/GetStatusHistory"
	LedgerService_ListStatusHistory_FullMethodName   = "/" + ServiceName + "/ListStatusHistory"
	LedgerService_GetAuditEntry_FullMethodName       = "/" + ServiceName + "/GetAuditEntry"
	LedgerService_ListAuditEntries_FullMethodName    = "/" + ServiceName + "/ListAuditEntries"
	LedgerService_GetRole_FullMethodName             = "/" + ServiceName + "/GetRole"
)

// MutatingMethods are the methods that require an authenticated caller.
var MutatingMethods = map[string]bool{
	LedgerService_RegisterProduct_FullMethodName:     true,
	LedgerService_UpdateProductStatus_FullMethodName: true,
	LedgerService_AssignRole_FullMethodName:          true,
}

// LedgerServiceServer is the server API for LedgerService.
type LedgerServiceServer interface {
	RegisterProduct(context.Context, *RegisterProductRequest) (*RegisterProductReply, error)
	UpdateProductStatus(context.Context, *UpdateProductStatusRequest) (*UpdateProductStatusReply, error)
	AssignRole(context.Context, *AssignRoleRequest) (*AssignRoleReply, error)
	GetProduct(context.Context, *GetProductRequest) (*GetProductReply, error)
	GetStatusHistory(context.Context, *GetStatusHistoryRequest) (*GetStatusHistoryReply, error)
	ListStatusHistory(context.Context, *ListStatusHistoryRequest) (*ListStatusHistoryReply, error)
	GetAuditEntry(context.Context, *GetAuditEntryRequest) (*GetAuditEntryReply, error)
	ListAuditEntries(context.Context, *ListAuditEntriesRequest) (*ListAuditEntriesReply, error)
	GetRole(context.Context, *GetRoleRequest) (*GetRoleReply, error)
}

// UnimplementedLedgerServiceServer returns Unimplemented for every method.
// Embed it by value for forward compatibility.
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) RegisterProduct(context.Context, *RegisterProductRequest) (*RegisterProductReply, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterProduct not implemented")
}
func (UnimplementedLedgerServiceServer) UpdateProductStatus(context.Context, *UpdateProductStatusRequest) (*UpdateProductStatusReply, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProductStatus not implemented")
}
func (UnimplementedLedgerServiceServer) AssignRole(context.Context, *AssignRoleRequest) (*AssignRoleReply, error) {
	return nil, status.Error(codes.Unimplemented, "method AssignRole not implemented")
}
func (UnimplementedLedgerServiceServer) GetProduct(context.Context, *GetProductRequest) (*GetProductReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProduct not implemented")
}
func (UnimplementedLedgerServiceServer) GetStatusHistory(context.Context, *GetStatusHistoryRequest) (*GetStatusHistoryReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStatusHistory not implemented")
}
func (UnimplementedLedgerServiceServer) ListStatusHistory(context.Context, *ListStatusHistoryRequest) (*ListStatusHistoryReply, error) {
	return nil, status.Error(codes.Unimplemented, "method ListStatusHistory not implemented")
}
func (UnimplementedLedgerServiceServer) GetAuditEntry(context.Context, *GetAuditEntryRequest) (*GetAuditEntryReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAuditEntry not implemented")
}
func (UnimplementedLedgerServiceServer) ListAuditEntries(context.Context, *ListAuditEntriesRequest) (*ListAuditEntriesReply, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditEntries not implemented")
}
func (UnimplementedLedgerServiceServer) GetRole(context.Context, *GetRoleRequest) (*GetRoleReply, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRole not implemented")
}

// RegisterLedgerServiceServer registers srv with s.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler.
func unaryHandler[Req any, Reply any](
	fullMethod string,
	call func(srv LedgerServiceServer, ctx context.Context, req *Req) (*Reply, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerService_ServiceDesc is the grpc.ServiceDesc for LedgerService.
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterProduct",
			Handler: unaryHandler(LedgerService_RegisterProduct_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *RegisterProductRequest) (*RegisterProductReply, error) {
					return srv.RegisterProduct(ctx, req)
				}),
		},
		{
			MethodName: "UpdateProductStatus",
			Handler: unaryHandler(LedgerService_UpdateProductStatus_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *UpdateProductStatusRequest) (*UpdateProductStatusReply, error) {
					return srv.UpdateProductStatus(ctx, req)
				}),
		},
		{
			MethodName: "AssignRole",
			Handler: unaryHandler(LedgerService_AssignRole_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *AssignRoleRequest) (*AssignRoleReply, error) {
					return srv.AssignRole(ctx, req)
				}),
		},
		{
			MethodName: "GetProduct",
			Handler: unaryHandler(LedgerService_GetProduct_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *GetProductRequest) (*GetProductReply, error) {
					return srv.GetProduct(ctx, req)
				}),
		},
		{
			MethodName: "GetStatusHistory",
			Handler: unaryHandler(LedgerService_GetStatusHistory_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *GetStatusHistoryRequest) (*GetStatusHistoryReply, error) {
					return srv.GetStatusHistory(ctx, req)
				}),
		},
		{
			MethodName: "ListStatusHistory",
			Handler: unaryHandler(LedgerService_ListStatusHistory_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *ListStatusHistoryRequest) (*ListStatusHistoryReply, error) {
					return srv.ListStatusHistory(ctx, req)
				}),
		},
		{
			MethodName: "GetAuditEntry",
			Handler: unaryHandler(LedgerService_GetAuditEntry_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *GetAuditEntryRequest) (*GetAuditEntryReply, error) {
					return srv.GetAuditEntry(ctx, req)
				}),
		},
		{
			MethodName: "ListAuditEntries",
			Handler: unaryHandler(LedgerService_ListAuditEntries_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *ListAuditEntriesRequest) (*ListAuditEntriesReply, error) {
					return srv.ListAuditEntries(ctx, req)
				}),
		},
		{
			MethodName: "GetRole",
			Handler: unaryHandler(LedgerService_GetRole_FullMethodName,
				func(srv LedgerServiceServer, ctx context.Context, req *GetRoleRequest) (*GetRoleReply, error) {
					return srv.GetRole(ctx, req)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "provenance/ledger/v1/ledger.json",
}
