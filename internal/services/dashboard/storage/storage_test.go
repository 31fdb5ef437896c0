package storage

import (
	"context"
	"testing"
)

type memoryStates struct {
	values map[string]string
}

func (m *memoryStates) Close() error { return nil }

func (m *memoryStates) GetClientState(_ context.Context, name string) (ClientState, bool, error) {
	value, ok := m.values[name]
	return ClientState{Name: name, Value: value}, ok, nil
}

func (m *memoryStates) PutClientState(_ context.Context, state ClientState) error {
	m.values[state.Name] = state.Value
	return nil
}

func (m *memoryStates) DeleteClientState(_ context.Context, name string) error {
	delete(m.values, name)
	return nil
}

func TestAccessTokensUsesFixedKey(t *testing.T) {
	t.Parallel()

	states := &memoryStates{values: map[string]string{}}
	tokens := AccessTokens{States: states}
	if err := tokens.SaveToken(context.Background(), "tok"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if got := states.values["accessToken"]; got != "tok" {
		t.Fatalf("values[accessToken] = %q, want %q", got, "tok")
	}
}

func TestAccessTokensTreatsBlankAsMissing(t *testing.T) {
	t.Parallel()

	tokens := AccessTokens{States: &memoryStates{values: map[string]string{AccessTokenKey: "  "}}}
	if _, ok, err := tokens.LoadToken(context.Background()); ok || err != nil {
		t.Fatalf("LoadToken() ok = %v, err = %v, want false, nil", ok, err)
	}
}

func TestAccessTokensRequiresStore(t *testing.T) {
	t.Parallel()

	var tokens AccessTokens
	ctx := context.Background()
	if _, _, err := tokens.LoadToken(ctx); err == nil {
		t.Fatal("LoadToken() error = nil")
	}
	if err := tokens.SaveToken(ctx, "tok"); err == nil {
		t.Fatal("SaveToken() error = nil")
	}
	if err := tokens.DeleteToken(ctx); err == nil {
		t.Fatal("DeleteToken() error = nil")
	}
}
