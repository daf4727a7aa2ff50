package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const RentalLedgerServiceName = "evrental.v1.RentalLedgerService"

const (
	FullMethodCreateRentalAgreement = "/" + RentalLedgerServiceName + "/CreateRentalAgreement"
	FullMethodReturnEVCar           = "/" + RentalLedgerServiceName + "/ReturnEVCar"
	FullMethodUpdateEVCarState      = "/" + RentalLedgerServiceName + "/UpdateEVCarState"
	FullMethodGetRentalAgreement    = "/" + RentalLedgerServiceName + "/GetRentalAgreement"
	FullMethodGetEVCarState         = "/" + RentalLedgerServiceName + "/GetEVCarState"
)

// RentalLedgerServer is the server API for the rental ledger service. Requests
// and responses are google.protobuf.Struct messages with snake_case keys.
type RentalLedgerServer interface {
	CreateRentalAgreement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReturnEVCar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEVCarState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRentalAgreement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEVCarState(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterRentalLedgerServer(s grpc.ServiceRegistrar, srv RentalLedgerServer) {
	s.RegisterService(&RentalLedgerServiceDesc, srv)
}

type unaryMethod func(srv RentalLedgerServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RentalLedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RentalLedgerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RentalLedgerServiceDesc is written by hand over google.protobuf.Struct.
// Metadata names a .proto file that is not compiled into the binary, so the
// server reflection service cannot describe it and is not registered.
var RentalLedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: RentalLedgerServiceName,
	HandlerType: (*RentalLedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateRentalAgreement",
			Handler:    unaryHandler(FullMethodCreateRentalAgreement, RentalLedgerServer.CreateRentalAgreement),
		},
		{
			MethodName: "ReturnEVCar",
			Handler:    unaryHandler(FullMethodReturnEVCar, RentalLedgerServer.ReturnEVCar),
		},
		{
			MethodName: "UpdateEVCarState",
			Handler:    unaryHandler(FullMethodUpdateEVCarState, RentalLedgerServer.UpdateEVCarState),
		},
		{
			MethodName: "GetRentalAgreement",
			Handler:    unaryHandler(FullMethodGetRentalAgreement, RentalLedgerServer.GetRentalAgreement),
		},
		{
			MethodName: "GetEVCarState",
			Handler:    unaryHandler(FullMethodGetEVCarState, RentalLedgerServer.GetEVCarState),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "evrental/v1/rental_ledger.proto",
}

// RentalLedgerClient calls RentalLedgerServer over a client connection.
type RentalLedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewRentalLedgerClient(cc grpc.ClientConnInterface) *RentalLedgerClient {
	return &RentalLedgerClient{cc: cc}
}

func (c *RentalLedgerClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RentalLedgerClient) CreateRentalAgreement(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FullMethodCreateRentalAgreement, in, opts...)
}

func (c *RentalLedgerClient) ReturnEVCar(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FullMethodReturnEVCar, in, opts...)
}

func (c *RentalLedgerClient) UpdateEVCarState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FullMethodUpdateEVCarState, in, opts...)
}

func (c *RentalLedgerClient) GetRentalAgreement(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FullMethodGetRentalAgreement, in, opts...)
}

func (c *RentalLedgerClient) GetEVCarState(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FullMethodGetEVCarState, in, opts...)
}
