// Package control serves a running daemon's status over the local control
// socket, as gRPC (autoclip.v1.Control) and as HTTP/JSON (GET /v1/status)
// on the same listener.
package control

import (
	"context"
	"os"
	"time"

	"google.golang.org/grpc"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/internal/watcher"
)

const (
	serviceName    = "autoclip.v1.Control"
	statusMethod   = "/" + serviceName + "/Status"
	statusHTTPPath = "/v1/status"
)

// StatusRequest is empty; it exists so the method has a request message.
type StatusRequest struct{}

// PluginInfo describes one loaded plugin instance.
type PluginInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Backend string `json:"backend"`
}

// StatusResponse is a snapshot of the daemon.
type StatusResponse struct {
	Version         string        `json:"version"`
	PID             int           `json:"pid"`
	StartedAt       time.Time     `json:"started_at"`
	PollingInterval string        `json:"polling_interval"`
	PluginDir       string        `json:"plugin_dir"`
	Plugins         []PluginInfo  `json:"plugins"`
	Stats           watcher.Stats `json:"stats"`
}

// ControlServer is the server API of autoclip.v1.Control.
type ControlServer interface {
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
}

// Info is the static part of a status response.
type Info struct {
	Version   string
	PluginDir string
	Interval  time.Duration
}

// Service implements ControlServer for a running daemon.
type Service struct {
	info    Info
	started time.Time
	plugins *plugin.Collection
	stats   func() watcher.Stats
}

// NewService returns a Service reporting on plugins and the loop counters
// returned by stats.
func NewService(info Info, plugins *plugin.Collection, stats func() watcher.Stats) *Service {
	return &Service{info: info, started: time.Now(), plugins: plugins, stats: stats}
}

// Status implements ControlServer.
func (s *Service) Status(_ context.Context, _ *StatusRequest) (*StatusResponse, error) {
	resp := &StatusResponse{
		Version:         s.info.Version,
		PID:             os.Getpid(),
		StartedAt:       s.started,
		PollingInterval: s.info.Interval.String(),
		PluginDir:       s.info.PluginDir,
		Plugins:         []PluginInfo{},
	}
	for _, in := range s.plugins.Instances() {
		resp.Plugins = append(resp.Plugins, PluginInfo{Name: in.Name(), Path: in.Path(), Backend: in.Backend()})
	}
	if s.stats != nil {
		resp.Stats = s.stats()
	}
	return resp, nil
}

// ServiceDesc describes autoclip.v1.Control for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "autoclip/v1/control",
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: statusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).Status(ctx, req.(*StatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}
