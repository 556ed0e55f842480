package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
	"golang.org/x/net/netutil"

	"mcp-http-test/mcp"
	"mcp-http-test/mcp/config"
	"mcp-http-test/mcp/types"
)

// Server exposes a Dispatcher over a single HTTP POST endpoint.
type Server struct {
	cfg        *config.Config
	dispatcher *mcp.Dispatcher
	hostStats  hostStatsFunc
	debug      bool
}

// Option customises server behavior during construction.
type Option func(*Server)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithDispatcher replaces the dispatcher built from the configuration.
func WithDispatcher(d *mcp.Dispatcher) Option {
	return func(s *Server) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// NewServer builds an HTTP server. Unless WithDispatcher is given, the
// dispatcher reports the server identity from the configuration.
func NewServer(opts ...Option) *Server {
	s := &Server{
		cfg:       config.Default(),
		hostStats: readHostStats,
		debug:     misc.Truthy(os.Getenv("DEBUG")),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.dispatcher == nil {
		s.dispatcher = mcp.NewDispatcher(mcp.WithServerInfo(s.cfg.Server.Name, s.cfg.Server.Version))
	}

	return s
}

// Handler returns the routes served by this server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleRPC)
	mux.HandleFunc("GET "+config.HealthPath, s.handleHealth)
	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	limited := netutil.LimitListener(ln, s.cfg.MaxConnections)
	ancli.Okf("serving %s v%s on http://%s%s\n", s.cfg.Server.Name, s.cfg.Server.Version, ln.Addr(), s.cfg.Path)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(limited)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	ancli.Okf("server stopped\n")
	return nil
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.writeResponse(w, http.StatusUnprocessableEntity,
			types.NewErrorResponse(nil, types.NewInvalidRequestError(fmt.Errorf("read body: %w", err))))
		return
	}

	req, err := types.ParseRequest(body)
	if err != nil {
		errObj := types.NewInvalidRequestError(err)
		if s.debug {
			ancli.Noticef("rejected request from %s: %v\n", r.RemoteAddr, err)
		}
		s.writeResponse(w, errObj.Code.HTTPStatus(), types.NewErrorResponse(nil, errObj))
		return
	}

	resp, status := s.dispatcher.Dispatch(req)
	if s.debug {
		ancli.Noticef("%s method=%s status=%d\n", r.RemoteAddr, req.Method, status)
	}
	s.writeResponse(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := s.dispatcher.Info()
	result := HealthResult{
		Status:  "ok",
		Server:  info.Name,
		Version: info.Version,
	}

	stats, err := s.hostStats()
	if err != nil {
		ancli.Warnf("failed to read host stats: %v\n", err)
	} else {
		result.Host = stats
	}

	s.writeResponse(w, http.StatusOK, result)
}

func (s *Server) writeResponse(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(payload); err != nil {
		ancli.Errf("failed to encode response: %v\n", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil && s.debug {
		ancli.Warnf("failed to send response: %v\n", err)
	}
}
