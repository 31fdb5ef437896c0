package dashboard

import (
	"context"
	"sync"

	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
)

// fakeSession implements module.Session with a settable state and a
// hand-driven update stream.
type fakeSession struct {
	mu      sync.Mutex
	state   session.State
	updates chan session.State
}

func newFakeSession(state session.State) *fakeSession {
	return &fakeSession{state: state, updates: make(chan session.State, 8)}
}

func (f *fakeSession) Snapshot() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// publish replaces the state and pushes it to the subscriber.
func (f *fakeSession) publish(state session.State) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
	f.updates <- state
}

func (f *fakeSession) Subscribe() (<-chan session.State, func()) {
	return f.updates, func() {}
}

func (f *fakeSession) SetToken(context.Context, string) error { return nil }

func (f *fakeSession) Retry(context.Context) error { return nil }

func (f *fakeSession) UploadCompleted(context.Context) error { return nil }

func (f *fakeSession) Logout(context.Context) error { return nil }
