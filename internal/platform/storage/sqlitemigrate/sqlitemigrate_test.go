package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyRunsFilesInOrderOnce(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"002_index.sql":  {Data: []byte("-- +migrate Up\nCREATE INDEX items_value ON items(value);\n-- +migrate Down\nDROP INDEX items_value;")},
		"001_create.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY, value TEXT);")},
		"README.md":      {Data: []byte("not a migration")},
	}

	if err := Apply(ctx, db, fsys, ""); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := Apply(ctx, db, fsys, ""); err != nil {
		t.Fatalf("Apply() replay error = %v", err)
	}

	applied, err := Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	want := []string{"001_create.sql", "002_index.sql"}
	if !reflect.DeepEqual(applied, want) {
		t.Fatalf("Applied() = %v, want %v", applied, want)
	}
}

func TestApplyUsesRootInKeys(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"sql/001_create.sql": {Data: []byte("CREATE TABLE items(id TEXT PRIMARY KEY);")},
	}
	if err := Apply(ctx, db, fsys, "sql"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	applied, err := Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(applied) != 1 || applied[0] != "sql/001_create.sql" {
		t.Fatalf("Applied() = %v, want [sql/001_create.sql]", applied)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE ok(id TEXT); CREATE TABLE broken(")},
	}
	if err := Apply(ctx, db, fsys, ""); err == nil {
		t.Fatal("Apply() error = nil, want error")
	}
	applied, err := Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied() error = %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("Applied() = %v, want none", applied)
	}
}

func TestApplyRequiresInputs(t *testing.T) {
	t.Parallel()

	if err := Apply(context.Background(), nil, fstest.MapFS{}, ""); err == nil {
		t.Fatal("Apply(nil db) error = nil, want error")
	}
	if err := Apply(context.Background(), openTestDB(t), nil, ""); err == nil {
		t.Fatal("Apply(nil fs) error = nil, want error")
	}
}

func TestUpSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(x);", want: "CREATE TABLE a(x);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(x);", want: "CREATE TABLE a(x);"},
		{name: "up and down", content: "-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;", want: "CREATE TABLE a(x);"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := strings.TrimSpace(UpSection(tc.content)); got != tc.want {
				t.Fatalf("UpSection() = %q, want %q", got, tc.want)
			}
		})
	}
}
