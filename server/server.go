package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io/ioutil"
	"net"
	"net/http"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/reflection"

	"github.com/xuperchain/classvm/common/config"
	"github.com/xuperchain/classvm/common/log"
	"github.com/xuperchain/classvm/engine"
	"github.com/xuperchain/classvm/server/classvmpb"
)

// Server implements classvmpb.ClassVMServer over a shared engine.VM: each
// RPC spins up its own Thread so concurrent calls never share a stack.
type Server struct {
	log       log.Logger
	vm        *engine.VM
	stackSize int
}

// NewServer builds a Server driving vm, with threads sized stackWords.
func NewServer(vm *engine.VM, stackWords int, logger log.Logger) *Server {
	return &Server{log: logger, vm: vm, stackSize: stackWords}
}

// RunMethod implements classvmpb.ClassVMServer.
func (s *Server) RunMethod(ctx context.Context, in *classvmpb.RunRequest) (*classvmpb.RunResponse, error) {
	s.log.Trace("RunMethod", "class", in.ClassName, "method", in.MethodName)
	thread := s.vm.NewThread(0, s.stackSize)

	// The engine gives each J or D parameter a second, padding stack slot.
	// Only primitive descriptors reach this RPC: one letter per parameter.
	var wide []bool
	for i := 1; i < len(in.MethodSpec) && in.MethodSpec[i] != ')'; i++ {
		wide = append(wide, in.MethodSpec[i] == 'J' || in.MethodSpec[i] == 'D')
	}
	args := make([]engine.Value, 0, len(in.Args))
	for i, w := range in.Args {
		args = append(args, engine.Value{Num: uint64(w)})
		if i < len(wide) && wide[i] {
			args = append(args, engine.Value{})
		}
	}

	result := thread.Run(ctx, in.ClassName, in.MethodName, in.MethodSpec, nil, args...)
	resp := &classvmpb.RunResponse{}
	if result.Exception != nil {
		resp.HasException = true
		resp.ExceptionClass = string(result.Exception.Class().Name)
		resp.ExceptionMessage = result.Exception.Message
		s.log.Warn("RunMethod threw", "class", in.ClassName, "method", in.MethodName, "exception", resp.ExceptionClass)
		return resp, nil
	}
	resp.HasValue = true
	resp.Value = int64(result.Value.Num)
	return resp, nil
}

// classRegistrar is satisfied by a *classloader.Loader without this
// package importing classloader directly.
type classRegistrar interface {
	Register(data []byte) (*engine.Class, error)
}

// LoadClass implements classvmpb.ClassVMServer. The server's VM must have
// been built with a ClassLoader that also implements classRegistrar for
// this to do anything useful.
func (s *Server) LoadClass(ctx context.Context, in *classvmpb.LoadClassRequest) (*classvmpb.LoadClassResponse, error) {
	registrar, ok := s.vm.Loader.(classRegistrar)
	if !ok {
		return nil, errNoRegistrar
	}
	class, err := registrar.Register(in.Data)
	if err != nil {
		return nil, err
	}
	return &classvmpb.LoadClassResponse{ClassName: string(class.Name)}, nil
}

var errNoRegistrar = errors.New("server's ClassLoader does not support runtime class registration")

// Listen builds a grpc.Server around s with the access-log and prometheus
// interceptor chain, registers reflection, and serves on rc.Port until ctx
// is done or Serve returns.
func Listen(ctx context.Context, s *Server, rc *config.RPCConfig) error {
	var opts []grpc.ServerOption
	interceptors := []grpc.UnaryServerInterceptor{s.accessLogInterceptor()}

	enableMetric := rc.MetricPort != ""
	if enableMetric {
		opts = append(opts, grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor))
		interceptors = append(interceptors, grpc_prometheus.UnaryServerInterceptor)
	}
	opts = append(opts,
		middleware.WithUnaryServerChain(interceptors...),
		grpc.MaxMsgSize(rc.MaxMsgSize),
	)

	if rc.TLS {
		creds, err := loadServerTLS(rc.TLSPath)
		if err != nil {
			return err
		}
		opts = append(opts, grpc.Creds(creds))
	}

	grpcServer := grpc.NewServer(opts...)
	classvmpb.RegisterClassVMServer(grpcServer, s)
	reflection.Register(grpcServer)

	if enableMetric {
		grpc_prometheus.Register(grpcServer)
		go func() {
			s.log.Error("metrics server exited", "error", http.ListenAndServe(rc.MetricPort, promhttp.Handler()))
		}()
	}

	lis, err := net.Listen("tcp", rc.Port)
	if err != nil {
		return err
	}
	s.log.Trace("serving classvm rpc", "port", rc.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.Serve(lis) }()
	select {
	case <-ctx.Done():
		grpcServer.GracefulStop()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func loadServerTLS(tlsPath string) (credentials.TransportCredentials, error) {
	bs, err := ioutil.ReadFile(tlsPath + "/cert.crt")
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(bs)

	cert, err := tls.LoadX509KeyPair(tlsPath+"/key.pem", tlsPath+"/private.key")
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}), nil
}

// accessLogInterceptor logs every unary call's method name and outcome,
// with a panic recovery so one bad handler can't take down the server.
func (s *Server) accessLogInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if e := recover(); e != nil {
				s.log.Error("panic handling rpc", "method", info.FullMethod, "error", e)
			}
		}()
		s.log.Trace("rpc request", "method", info.FullMethod)
		resp, err = handler(ctx, req)
		if err != nil {
			s.log.Warn("rpc error", "method", info.FullMethod, "error", err)
		}
		return resp, err
	}
}
