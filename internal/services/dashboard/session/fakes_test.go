package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
)

type fetchResult struct {
	history []*equipment.Dataset
	err     error
}

// scriptedFetcher answers immediately with the result registered for a token.
type scriptedFetcher struct {
	mu      sync.Mutex
	results map[string]fetchResult
	calls   []string
}

func (f *scriptedFetcher) History(_ context.Context, token string) ([]*equipment.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, token)
	result, ok := f.results[token]
	if !ok {
		return nil, errors.New("unexpected token")
	}
	return result.history, result.err
}

func (f *scriptedFetcher) set(token string, result fetchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[token] = result
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// gatedFetcher blocks every fetch until the test releases it.
type gatedFetcher struct {
	calls chan *gatedCall
}

type gatedCall struct {
	token   string
	release chan fetchResult
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *gatedCall, 8)}
}

func (f *gatedFetcher) History(ctx context.Context, token string) ([]*equipment.Dataset, error) {
	call := &gatedCall{token: token, release: make(chan fetchResult, 1)}
	f.calls <- call
	select {
	case result := <-call.release:
		return result.history, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) next(t *testing.T) *gatedCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return nil
	}
}

type memoryTokens struct {
	mu      sync.Mutex
	token   string
	saved   bool
	saveErr error
	loadErr error
	deletes int
}

func (m *memoryTokens) LoadToken(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return "", false, m.loadErr
	}
	return m.token, m.saved, nil
}

func (m *memoryTokens) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	m.saved = true
	return nil
}

func (m *memoryTokens) DeleteToken(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.saved = false
	m.deletes++
	return nil
}

func (m *memoryTokens) current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.saved
}

func dataset(id int64, filename string) *equipment.Dataset {
	return &equipment.Dataset{
		ID:             id,
		Filename:       filename,
		UploadedAt:     time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
		TotalEquipment: 10,
		AvgFlowrate:    50,
		AvgPressure:    30,
		AvgTemperature: 20,
		Distribution:   equipment.Distribution{{Type: "Pump", Count: 6}, {Type: "Valve", Count: 4}},
	}
}

// assertInvariants checks the structural rules every published state obeys.
func assertInvariants(t *testing.T, s State) {
	t.Helper()
	if s.Status == StatusError && s.Current != nil {
		t.Fatalf("state %+v: error status with a current dataset", s)
	}
	if s.Current != nil && (s.Status != StatusReady || len(s.History) == 0) {
		t.Fatalf("state %+v: current set outside ready with history", s)
	}
	if s.Status == StatusReady && len(s.History) > 0 && s.Current != s.History[0] {
		t.Fatalf("state %+v: ready with history but current is not the newest", s)
	}
	if s.Status == StatusUnauthenticated && (s.Token != "" || len(s.History) != 0 || s.ErrorKind != ErrorNone) {
		t.Fatalf("state %+v: unauthenticated state is not empty", s)
	}
}
