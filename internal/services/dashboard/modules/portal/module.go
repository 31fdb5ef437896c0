package portal

import (
	"net/http"
	"time"

	"github.com/louisbranch/chemviz/internal/services/dashboard/module"
	"github.com/louisbranch/chemviz/internal/services/dashboard/routepath"
)

// Option configures a portal module.
type Option func(*Module)

// WithSession sets the session the portal reads and drives.
func WithSession(s module.Session) Option {
	return func(m *Module) { m.session = s }
}

// WithAPI sets the remote API used for uploads and credential login.
func WithAPI(api module.API) Option {
	return func(m *Module) { m.api = api }
}

// WithClock overrides the time source used for token expiry display.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// Module provides the upload and credential routes mounted at the root.
type Module struct {
	session module.Session
	api     module.API
	now     func() time.Time
}

// New returns a portal module configured by the given options.
// Without options every action reports the service as unavailable.
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
func (Module) ID() string { return "portal" }

// Healthy reports whether the portal has both collaborators configured.
func (m Module) Healthy() bool {
	return m.session != nil && m.api != nil
}

// Mount wires portal route handlers.
func (m Module) Mount() (module.Mount, error) {
	mux := http.NewServeMux()
	svc := newService(m.session, m.api)
	h := newHandlers(svc, m.now)
	registerRoutes(mux, h)
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
