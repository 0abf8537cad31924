package control

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

// Serve runs the gRPC service and the HTTP gateway on ln until ctx is
// cancelled. ln is closed on return.
func Serve(ctx context.Context, ln net.Listener, srv ControlServer) error {
	mux, err := newGateway(srv)
	if err != nil {
		ln.Close()
		return err
	}

	m := cmux.New(ln)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	gs := grpc.NewServer()
	gs.RegisterService(&ServiceDesc, srv)
	hs := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 3)
	go func() { errc <- gs.Serve(grpcL) }()
	go func() { errc <- hs.Serve(httpL) }()
	go func() { errc <- m.Serve() }()

	slog.Info("control socket listening", "addr", ln.Addr().String())

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
	}

	gs.Stop()
	_ = hs.Close()
	_ = ln.Close()

	if serveErr != nil && !errors.Is(serveErr, net.ErrClosed) && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}

// newGateway returns the HTTP/JSON side of the service.
func newGateway(srv ControlServer) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux(
		gwruntime.WithMarshalerOption(gwruntime.MIMEWildcard, &gwruntime.JSONBuiltin{}),
	)
	err := mux.HandlePath(http.MethodGet, statusHTTPPath, func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		_, outbound := gwruntime.MarshalerForRequest(mux, r)
		resp, err := srv.Status(r.Context(), &StatusRequest{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		buf, err := outbound.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", outbound.ContentType(resp))
		_, _ = w.Write(buf)
	})
	if err != nil {
		return nil, err
	}
	return mux, nil
}
