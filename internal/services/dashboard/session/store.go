// Package session owns the dashboard's single operator session: the access
// token, the loaded upload history and which dataset is on screen.
//
// Store is the only writer of that state. Each history fetch runs in its own
// goroutine tagged with a generation number; a result commits only while its
// generation and token are still current, so the last token set always wins.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	apperrors "github.com/louisbranch/chemviz/internal/services/dashboard/platform/errors"
)

// Status is the session lifecycle phase.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusLoading         Status = "loading"
	StatusReady           Status = "ready"
	StatusError           Status = "error"
)

// ErrorKind classifies the last failed fetch. Transport detail is never
// kept on the session.
type ErrorKind string

const (
	ErrorNone        ErrorKind = ""
	ErrorAuthExpired ErrorKind = "auth_expired"
	ErrorConnection  ErrorKind = "connection_error"
)

const defaultFetchTimeout = 10 * time.Second

// State is an immutable snapshot of the session.
type State struct {
	Token     string               `json:"-"`
	History   []*equipment.Dataset `json:"history"`
	Current   *equipment.Dataset   `json:"current"`
	Status    Status               `json:"status"`
	ErrorKind ErrorKind            `json:"error_kind,omitempty"`
	// Version increases on every published change.
	Version uint64 `json:"version"`
}

// HasToken reports whether an access token is set.
func (s State) HasToken() bool {
	return s.Token != ""
}

// Message is the operator-facing copy for the current error kind.
func (s State) Message() string {
	switch s.ErrorKind {
	case ErrorAuthExpired:
		return "Session expired or invalid. Please set a new token."
	case ErrorConnection:
		return "Backend Connection Error"
	default:
		return ""
	}
}

// HistoryFetcher loads the dataset history for an access token.
type HistoryFetcher interface {
	History(ctx context.Context, token string) ([]*equipment.Dataset, error)
}

// TokenStore persists the access token between process restarts.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, bool, error)
	SaveToken(ctx context.Context, token string) error
	DeleteToken(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithFetchTimeout bounds each history fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

// Store is the session state machine.
type Store struct {
	fetcher      HistoryFetcher
	tokens       TokenStore
	fetchTimeout time.Duration

	// actionMu keeps token persistence ordered with the transition it
	// belongs to.
	actionMu sync.Mutex

	mu          sync.Mutex
	state       State
	generation  uint64
	baseCtx     context.Context
	started     bool
	subscribers map[int]chan State
	nextSubID   int

	inflight sync.WaitGroup
}

// NewStore builds a Store in the unauthenticated state.
func NewStore(fetcher HistoryFetcher, tokens TokenStore, opts ...Option) *Store {
	s := &Store{
		fetcher:      fetcher,
		tokens:       tokens,
		fetchTimeout: defaultFetchTimeout,
		state:        State{Status: StatusUnauthenticated},
		baseCtx:      context.Background(),
		subscribers:  make(map[int]chan State),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start restores the persisted token and, when one exists, begins loading
// its history. ctx scopes every later fetch; cancel it to stop the store.
func (s *Store) Start(ctx context.Context) error {
	if s == nil {
		return apperrors.E(apperrors.KindUnavailable, "session store is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.baseCtx = ctx
	s.mu.Unlock()

	if s.tokens == nil {
		return nil
	}
	token, ok, err := s.tokens.LoadToken(ctx)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	s.state.History = nil
	s.launchLocked("start")
	return nil
}

// SetToken persists token and reloads history under it. It is valid from
// any state and supersedes any fetch already in flight.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if s == nil {
		return apperrors.E(apperrors.KindUnavailable, "session store is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.E(apperrors.KindInvalidInput, "access token is required")
	}
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	if s.tokens != nil {
		if err := s.tokens.SaveToken(ctx, token); err != nil {
			return fmt.Errorf("save access token: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Token = token
	s.state.History = nil
	s.launchLocked("set_token")
	return nil
}

// Retry reloads history with the current token.
func (s *Store) Retry(ctx context.Context) error {
	return s.reload("retry")
}

// UploadCompleted reloads history after a successful upload so the new
// dataset becomes current.
func (s *Store) UploadCompleted(ctx context.Context) error {
	return s.reload("upload_completed")
}

func (s *Store) reload(reason string) error {
	if s == nil {
		return apperrors.E(apperrors.KindUnavailable, "session store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return apperrors.E(apperrors.KindInvalidInput, "no access token is set")
	}
	s.launchLocked(reason)
	return nil
}

// Logout forgets the token and resets to unauthenticated. A fetch still in
// flight is discarded when it returns. The in-memory reset happens even when
// deleting the persisted token fails.
func (s *Store) Logout(ctx context.Context) error {
	if s == nil {
		return apperrors.E(apperrors.KindUnavailable, "session store is not configured")
	}
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	var deleteErr error
	if s.tokens != nil {
		if err := s.tokens.DeleteToken(ctx); err != nil {
			deleteErr = fmt.Errorf("delete access token: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = State{Status: StatusUnauthenticated, Version: s.state.Version}
	log.Printf("session transition status=%s reason=logout", s.state.Status)
	s.publishLocked()
	return deleteErr
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	if s == nil {
		return State{Status: StatusUnauthenticated}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe streams state changes. The channel holds at most the latest
// unread state; slow readers skip intermediate states. Call cancel to stop.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	if s == nil {
		close(ch)
		return ch, func() {}
	}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Wait blocks until every fetch started so far has returned.
func (s *Store) Wait() {
	if s == nil {
		return
	}
	s.inflight.Wait()
}

// launchLocked enters Loading and starts a fetch for the current token.
// Callers hold s.mu.
func (s *Store) launchLocked(reason string) {
	s.generation++
	generation := s.generation
	token := s.state.Token
	base := s.baseCtx

	s.state.Status = StatusLoading
	s.state.ErrorKind = ErrorNone
	s.state.Current = nil
	log.Printf("session transition status=%s reason=%s generation=%d", s.state.Status, reason, generation)
	s.publishLocked()

	if s.fetcher == nil {
		s.applyLocked(nil, apperrors.E(apperrors.KindUnavailable, "history fetcher is not configured"))
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(base, s.fetchTimeout)
		defer cancel()
		history, err := s.fetcher.History(ctx, token)
		s.commit(generation, token, history, err)
	}()
}

func (s *Store) commit(generation uint64, token string, history []*equipment.Dataset, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || token != s.state.Token {
		log.Printf("session discard stale fetch generation=%d current_generation=%d", generation, s.generation)
		return
	}
	s.applyLocked(history, err)
}

func (s *Store) applyLocked(history []*equipment.Dataset, err error) {
	if err != nil {
		kind := ErrorConnection
		if apperrors.KindOf(err) == apperrors.KindAuthExpired {
			kind = ErrorAuthExpired
		}
		s.state.Status = StatusError
		s.state.ErrorKind = kind
		s.state.Current = nil
		log.Printf("session transition status=%s error_kind=%s err=%v", s.state.Status, kind, err)
		s.publishLocked()
		return
	}

	loaded := make([]*equipment.Dataset, 0, len(history))
	for _, d := range history {
		if d != nil {
			loaded = append(loaded, d)
		}
	}
	s.state.History = loaded
	s.state.Status = StatusReady
	s.state.ErrorKind = ErrorNone
	s.state.Current = nil
	if len(loaded) > 0 {
		s.state.Current = loaded[0]
	}
	log.Printf("session transition status=%s datasets=%d", s.state.Status, len(loaded))
	s.publishLocked()
}

// publishLocked bumps the version and hands the new state to subscribers.
// Callers hold s.mu.
func (s *Store) publishLocked() {
	s.state.Version++
	snapshot := s.state.clone()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (s State) clone() State {
	if s.History != nil {
		s.History = append([]*equipment.Dataset(nil), s.History...)
	}
	return s
}
