package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServerParams struct {
	fx.In

	Context context.Context

	Config   Config
	Registry *prometheus.Registry

	Logger *zap.Logger
}

// Server serves the prometheus registry over plain http.
type Server struct {
	ctx    context.Context
	addr   string
	server *http.Server
	log    *zap.Logger
}

func NewServer(params ServerParams) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", params.Config.Host, params.Config.Port)

	return &Server{
		ctx:  params.Context,
		addr: addr,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		log: params.Logger,
	}
}

func NewLifecycleServer(params ServerParams, lc fx.Lifecycle) *Server {
	server := NewServer(params)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go server.Serve(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
	return server
}

func (s *Server) Serve(context.Context) error {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	cfg := net.ListenConfig{}

	listener, err := cfg.Listen(ctx, "tcp", s.addr)
	if err != nil {
		s.log.With(zap.Error(err)).Error("failed to listen")
		return err
	}

	s.log.With(zap.String("address", listener.Addr().String())).Info("serving metrics")

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		s.log.With(zap.Error(err)).Error("failed to serve")
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.With(zap.Error(err)).Error("failed to shutdown")
		return err
	}

	return nil
}
