package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/chemviz/internal/platform/storage/sqlitemigrate"
	dashstorage "github.com/louisbranch/chemviz/internal/services/dashboard/storage"
	"github.com/louisbranch/chemviz/internal/services/dashboard/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for dashboard client state.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a client-state SQLite store, creating the parent
// directory when needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetClientState loads one named value.
func (s *Store) GetClientState(ctx context.Context, name string) (dashstorage.ClientState, bool, error) {
	if s == nil || s.sqlDB == nil {
		return dashstorage.ClientState{}, false, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return dashstorage.ClientState{}, false, fmt.Errorf("state name is required")
	}

	var state dashstorage.ClientState
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT name, value, updated_at FROM client_state WHERE name = ?`,
		name,
	).Scan(&state.Name, &state.Value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return dashstorage.ClientState{}, false, nil
	}
	if err != nil {
		return dashstorage.ClientState{}, false, fmt.Errorf("get client state: %w", err)
	}
	state.UpdatedAt = unixMillisToTime(updatedAt)
	return state, true, nil
}

// PutClientState upserts one named value.
func (s *Store) PutClientState(ctx context.Context, state dashstorage.ClientState) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	state.Name = strings.TrimSpace(state.Name)
	if state.Name == "" {
		return fmt.Errorf("state name is required")
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = s.now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO client_state (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		    value = excluded.value,
		    updated_at = excluded.updated_at`,
		state.Name,
		state.Value,
		timeToUnixMillis(state.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put client state: %w", err)
	}
	return nil
}

// DeleteClientState removes one named value. Deleting a missing name is not
// an error.
func (s *Store) DeleteClientState(ctx context.Context, name string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("state name is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM client_state WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete client state: %w", err)
	}
	return nil
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ dashstorage.Store = (*Store)(nil)
