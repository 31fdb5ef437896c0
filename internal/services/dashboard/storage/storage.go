package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AccessTokenKey names the persisted access token entry.
const AccessTokenKey = "accessToken"

// ClientState is one named value kept between process restarts.
type ClientState struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// Store is the contract for client-state persistence.
type Store interface {
	Close() error
	GetClientState(ctx context.Context, name string) (ClientState, bool, error)
	PutClientState(ctx context.Context, state ClientState) error
	DeleteClientState(ctx context.Context, name string) error
}

// AccessTokens persists the access token under AccessTokenKey.
type AccessTokens struct {
	States Store
}

// LoadToken returns the persisted token, if any.
func (a AccessTokens) LoadToken(ctx context.Context) (string, bool, error) {
	if a.States == nil {
		return "", false, fmt.Errorf("client state store is not configured")
	}
	state, ok, err := a.States.GetClientState(ctx, AccessTokenKey)
	if err != nil || !ok {
		return "", false, err
	}
	token := strings.TrimSpace(state.Value)
	return token, token != "", nil
}

// SaveToken replaces the persisted token.
func (a AccessTokens) SaveToken(ctx context.Context, token string) error {
	if a.States == nil {
		return fmt.Errorf("client state store is not configured")
	}
	return a.States.PutClientState(ctx, ClientState{Name: AccessTokenKey, Value: token})
}

// DeleteToken removes the persisted token.
func (a AccessTokens) DeleteToken(ctx context.Context) error {
	if a.States == nil {
		return fmt.Errorf("client state store is not configured")
	}
	return a.States.DeleteClientState(ctx, AccessTokenKey)
}
