package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	dashstorage "github.com/louisbranch/chemviz/internal/services/dashboard/storage"
	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "chemviz.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("Open(blank) error = nil, want error")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	t.Parallel()

	_, path := openTestStore(t)
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	var name string
	if err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'client_state'`).Scan(&name); err != nil {
		t.Fatalf("client_state table: %v", err)
	}
}

func TestReopenKeepsState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chemviz.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ctx := context.Background()
	if err := first.PutClientState(ctx, dashstorage.ClientState{Name: "accessToken", Value: "tok-1"}); err != nil {
		t.Fatalf("PutClientState() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = second.Close() }()
	state, ok, err := second.GetClientState(ctx, "accessToken")
	if err != nil || !ok {
		t.Fatalf("GetClientState() = %v, %v, %v", state, ok, err)
	}
	if state.Value != "tok-1" {
		t.Fatalf("Value = %q, want %q", state.Value, "tok-1")
	}
}

func TestClientStateLifecycle(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.GetClientState(ctx, "accessToken"); err != nil || ok {
		t.Fatalf("GetClientState(missing) ok = %v, err = %v", ok, err)
	}

	updatedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	if err := store.PutClientState(ctx, dashstorage.ClientState{Name: " accessToken ", Value: "tok-1", UpdatedAt: updatedAt}); err != nil {
		t.Fatalf("PutClientState() error = %v", err)
	}
	if err := store.PutClientState(ctx, dashstorage.ClientState{Name: "accessToken", Value: "tok-2", UpdatedAt: updatedAt.Add(time.Minute)}); err != nil {
		t.Fatalf("PutClientState() overwrite error = %v", err)
	}

	state, ok, err := store.GetClientState(ctx, "accessToken")
	if err != nil || !ok {
		t.Fatalf("GetClientState() ok = %v, err = %v", ok, err)
	}
	if state.Value != "tok-2" {
		t.Fatalf("Value = %q, want %q", state.Value, "tok-2")
	}
	if !state.UpdatedAt.Equal(updatedAt.Add(time.Minute)) {
		t.Fatalf("UpdatedAt = %v, want %v", state.UpdatedAt, updatedAt.Add(time.Minute))
	}

	if err := store.DeleteClientState(ctx, "accessToken"); err != nil {
		t.Fatalf("DeleteClientState() error = %v", err)
	}
	if err := store.DeleteClientState(ctx, "accessToken"); err != nil {
		t.Fatalf("DeleteClientState() twice error = %v", err)
	}
	if _, ok, _ := store.GetClientState(ctx, "accessToken"); ok {
		t.Fatal("GetClientState() after delete ok = true")
	}
}

func TestClientStateRequiresName(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	ctx := context.Background()
	if _, _, err := store.GetClientState(ctx, ""); err == nil {
		t.Fatal("GetClientState(\"\") error = nil")
	}
	if err := store.PutClientState(ctx, dashstorage.ClientState{Value: "x"}); err == nil {
		t.Fatal("PutClientState(no name) error = nil")
	}
	if err := store.DeleteClientState(ctx, " "); err == nil {
		t.Fatal("DeleteClientState(blank) error = nil")
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, _, err := store.GetClientState(context.Background(), "accessToken"); err == nil {
		t.Fatal("GetClientState() on nil store error = nil")
	}
}

func TestAccessTokensRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := openTestStore(t)
	tokens := dashstorage.AccessTokens{States: store}
	ctx := context.Background()

	if _, ok, err := tokens.LoadToken(ctx); err != nil || ok {
		t.Fatalf("LoadToken() empty ok = %v, err = %v", ok, err)
	}
	if err := tokens.SaveToken(ctx, "tok-9"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	token, ok, err := tokens.LoadToken(ctx)
	if err != nil || !ok || token != "tok-9" {
		t.Fatalf("LoadToken() = %q, %v, %v", token, ok, err)
	}
	if err := tokens.DeleteToken(ctx); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
	if _, ok, _ := tokens.LoadToken(ctx); ok {
		t.Fatal("LoadToken() after delete ok = true")
	}
}
