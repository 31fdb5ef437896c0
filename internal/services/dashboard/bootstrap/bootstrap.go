// Package bootstrap opens the collaborators every chemviz command shares:
// the durable client state, the telemetry API client and the session.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/louisbranch/chemviz/internal/platform/timeouts"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
	"github.com/louisbranch/chemviz/internal/services/dashboard/storage"
	"github.com/louisbranch/chemviz/internal/services/dashboard/storage/sqlite"
)

// Settings locates the API and the local state database.
type Settings struct {
	APIBaseURL string
	DBPath     string
	APITimeout time.Duration
}

// Runtime bundles the opened collaborators.
type Runtime struct {
	States  *sqlite.Store
	Tokens  storage.AccessTokens
	Client  *remote.Client
	Session *session.Store
}

// Open opens the state database, builds the API client and a session bound
// to both. The session is not started.
func Open(settings Settings) (*Runtime, error) {
	timeout := settings.APITimeout
	if timeout <= 0 {
		timeout = timeouts.APIRequest
	}
	client, err := remote.NewClient(settings.APIBaseURL, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	states, err := sqlite.Open(settings.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open client state: %w", err)
	}
	tokens := storage.AccessTokens{States: states}
	return &Runtime{
		States:  states,
		Tokens:  tokens,
		Client:  client,
		Session: session.NewStore(client, tokens, session.WithFetchTimeout(timeout)),
	}, nil
}

// Start restores the persisted session under ctx.
func (r *Runtime) Start(ctx context.Context) error {
	if r == nil || r.Session == nil {
		return errors.New("runtime is not open")
	}
	return r.Session.Start(ctx)
}

// Close waits for in-flight fetches and closes the state database.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	if r.Session != nil {
		r.Session.Wait()
	}
	if r.States == nil {
		return nil
	}
	return r.States.Close()
}
