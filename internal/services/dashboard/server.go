// Package dashboard hosts the browser-facing equipment telemetry dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/platform/timeouts"
	"github.com/louisbranch/chemviz/internal/services/dashboard/app"
	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	"github.com/louisbranch/chemviz/internal/services/dashboard/modules"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/httpx"
	"github.com/louisbranch/chemviz/internal/services/dashboard/platform/observability"
	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
)

// Config defines startup inputs for the dashboard service.
type Config struct {
	HTTPAddr string
	Session  module.Session
	API      module.API
	Sampler  *equipment.Sampler
	Now      func() time.Time
}

// Server hosts the dashboard HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewHandler builds the root handler from the default module set.
func NewHandler(cfg Config) (http.Handler, error) {
	deps := module.Dependencies{
		Session: cfg.Session,
		API:     cfg.API,
		Sampler: cfg.Sampler,
		Now:     cfg.Now,
	}
	mods := modules.Default(deps)
	h, err := app.Composer{}.Compose(app.ComposeInput{Modules: mods})
	if err != nil {
		return nil, err
	}
	rootMux := http.NewServeMux()
	rootMux.HandleFunc(http.MethodGet+" "+routepath.Health, healthHandler(mods))
	rootMux.Handle("/", h)
	return httpx.Chain(rootMux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		observability.RequestLogger(log.Default()),
	), nil
}

func healthHandler(mods []module.Module) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status, code := "ok", http.StatusOK
		if !modules.Healthy(mods) {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		_ = httpx.WriteJSON(w, code, map[string]string{"status": status})
	}
}

// NewServer validates config and constructs a dashboard server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose dashboard handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("dashboard server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("dashboard listening addr=%s", s.httpAddr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown dashboard http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve dashboard http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
