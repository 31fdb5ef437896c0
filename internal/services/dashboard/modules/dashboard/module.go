package dashboard

import (
	"net/http"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
)

// Option configures a dashboard module.
type Option func(*Module)

// WithSession sets the session the dashboard renders.
func WithSession(s module.Session) Option {
	return func(m *Module) { m.session = s }
}

// WithSampler sets the scatter sample source.
func WithSampler(s *equipment.Sampler) Option {
	return func(m *Module) { m.sampler = s }
}

// WithClock overrides the report generation clock.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// Module provides the dataset dashboard, its chart images, the PDF export
// and the live session stream.
type Module struct {
	session module.Session
	sampler *equipment.Sampler
	now     func() time.Time
}

// New returns a dashboard module configured by the given options.
func New(opts ...Option) Module {
	var m Module
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// ID returns a stable module identifier.
func (Module) ID() string { return "dashboard" }

// Healthy reports whether the dashboard has a session to render.
func (m Module) Healthy() bool {
	return m.session != nil
}

// Mount wires dashboard route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	h := newHandlers(newService(m.session, m.sampler), m.now)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.DashboardPrefix, Handler: mux}, nil
}
