// Package rpc pages through a list exposed as a unary gRPC method.
//
// The service has a single method, /pagerkit.v1.PageService/List, whose
// request and response are google.protobuf.Struct messages:
//
//	request:  {"query": "...", "cursor": "...", "limit": 25}
//	response: {"items": [{...}, ...], "next_cursor": "..."}
//
// Using Struct keeps the wire contract schema-free, so any item type that
// round-trips through JSON can be paged without generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service and method names.
const (
	ServiceName    = "pagerkit.v1.PageService"
	MethodList     = "List"
	FullMethodList = "/" + ServiceName + "/" + MethodList
)

// Message field names.
const (
	FieldQuery      = "query"
	FieldCursor     = "cursor"
	FieldLimit      = "limit"
	FieldItems      = "items"
	FieldNextCursor = "next_cursor"
)

// PageServer is the server API for PageService.
type PageServer interface {
	List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes PageService for grpc.Server registration.
//
//nolint:gochecknoglobals // gRPC service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PageServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodList,
			Handler:    listHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pagerkit/v1/page.proto",
}

// RegisterPageServer registers srv on s.
func RegisterPageServer(s grpc.ServiceRegistrar, srv PageServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func listHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PageServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FullMethodList,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PageServer).List(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
