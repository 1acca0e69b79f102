package classvmpb

import (
	"context"

	"google.golang.org/grpc"
)

// ClassVMServer is the service interface server/server.go implements.
type ClassVMServer interface {
	RunMethod(context.Context, *RunRequest) (*RunResponse, error)
	LoadClass(context.Context, *LoadClassRequest) (*LoadClassResponse, error)
}

func _ClassVM_RunMethod_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClassVMServer).RunMethod(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/classvm.ClassVM/RunMethod"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClassVMServer).RunMethod(ctx, req.(*RunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClassVM_LoadClass_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LoadClassRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClassVMServer).LoadClass(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/classvm.ClassVM/LoadClass"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClassVMServer).LoadClass(ctx, req.(*LoadClassRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ClassVMServiceDesc mirrors the shape protoc-gen-go-grpc would emit for
// a two-method "ClassVM" service.
var ClassVMServiceDesc = grpc.ServiceDesc{
	ServiceName: "classvm.ClassVM",
	HandlerType: (*ClassVMServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunMethod", Handler: _ClassVM_RunMethod_Handler},
		{MethodName: "LoadClass", Handler: _ClassVM_LoadClass_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "classvmpb/service.go",
}

// RegisterClassVMServer registers srv against s, the way a generated
// RegisterXxxServer function would.
func RegisterClassVMServer(s *grpc.Server, srv ClassVMServer) {
	s.RegisterService(&ClassVMServiceDesc, srv)
}
