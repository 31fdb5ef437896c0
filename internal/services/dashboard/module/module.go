// Package module defines the feature contract used by dashboard composition.
package module

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
)

// Mount describes a module route mount.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module declares the minimum contract required by dashboard composition.
type Module interface {
	ID() string
	Mount() (Mount, error)
}

// HealthReporter is an optional interface for modules that can report their
// operational availability.
type HealthReporter interface {
	Healthy() bool
}

// Session is the session state machine as seen by page handlers.
type Session interface {
	Snapshot() session.State
	SetToken(ctx context.Context, token string) error
	Retry(ctx context.Context) error
	UploadCompleted(ctx context.Context) error
	Logout(ctx context.Context) error
	Subscribe() (<-chan session.State, func())
}

// API is the subset of the remote telemetry API the pages call directly.
type API interface {
	Upload(ctx context.Context, token, filename string, content io.Reader) (remote.UploadReceipt, error)
	ObtainToken(ctx context.Context, username, password string) (remote.TokenPair, error)
}

// Dependencies carries the collaborators shared by every module.
type Dependencies struct {
	Session Session
	API     API
	Sampler *equipment.Sampler
	Now     func() time.Time
}

var (
	_ Session = (*session.Store)(nil)
	_ API     = (*remote.Client)(nil)
)
