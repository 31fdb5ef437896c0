package portal

import (
	"context"
	"io"
	"sync"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
)

// fakeSession implements module.Session with a fixed state and call
// recording.
type fakeSession struct {
	mu    sync.Mutex
	state session.State

	setTokenErr error
	retryErr    error
	uploadErr   error
	logoutErr   error

	tokens      []string
	retries     int
	uploadsDone int
	logouts     int
}

func (f *fakeSession) Snapshot() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) SetToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	f.state.Token = token
	f.state.Status = session.StatusLoading
	return nil
}

func (f *fakeSession) Retry(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	return f.retryErr
}

func (f *fakeSession) UploadCompleted(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadsDone++
	return f.uploadErr
}

func (f *fakeSession) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.state = session.State{Status: session.StatusUnauthenticated}
	return f.logoutErr
}

func (f *fakeSession) Subscribe() (<-chan session.State, func()) {
	ch := make(chan session.State, 1)
	ch <- f.Snapshot()
	return ch, func() {}
}

// fakeAPI implements module.API and records what it was sent.
type fakeAPI struct {
	pair      remote.TokenPair
	loginErr  error
	uploadErr error

	lastUsername string
	lastPassword string
	lastToken    string
	lastFilename string
	lastContent  string
}

func (f *fakeAPI) Upload(_ context.Context, token, filename string, content io.Reader) (remote.UploadReceipt, error) {
	f.lastToken = token
	f.lastFilename = filename
	data, _ := io.ReadAll(content)
	f.lastContent = string(data)
	if f.uploadErr != nil {
		return remote.UploadReceipt{}, f.uploadErr
	}
	return remote.UploadReceipt{Dataset: &equipment.Dataset{ID: 9, Filename: filename}}, nil
}

func (f *fakeAPI) ObtainToken(_ context.Context, username, password string) (remote.TokenPair, error) {
	f.lastUsername = username
	f.lastPassword = password
	if f.loginErr != nil {
		return remote.TokenPair{}, f.loginErr
	}
	return f.pair, nil
}
