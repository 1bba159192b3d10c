package writer

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/pgterra/pgterra/internal/ir"
)

func buildSchema(t *testing.T) *ir.Schema {
	t.Helper()
	schema, err := ir.Load(`
		CREATE TABLE public.users (id bigint PRIMARY KEY, email text);
		CREATE VIEW public.active_users AS SELECT * FROM public.users;
	`)
	if err != nil {
		t.Fatalf("ir.Load() error = %v", err)
	}
	return schema
}

func TestWrite_Flat(t *testing.T) {
	fs := afero.NewMemMapFs()
	schema := buildSchema(t)

	if err := Write(fs, "/out", schema, LayoutFlat); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	exists, err := afero.Exists(fs, "/out/all.sql")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("expected /out/all.sql to exist")
	}
}

func TestWrite_Normal(t *testing.T) {
	fs := afero.NewMemMapFs()
	schema := buildSchema(t)

	if err := Write(fs, "/out", schema, LayoutNormal); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for _, path := range []string{"/out/public/04_tables.sql", "/out/public/05_views.sql"} {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			t.Fatalf("Exists(%s) error = %v", path, err)
		}
		if !exists {
			t.Errorf("expected %s to exist", path)
		}
	}
}

func TestWrite_Nested(t *testing.T) {
	fs := afero.NewMemMapFs()
	schema := buildSchema(t)

	if err := Write(fs, "/out", schema, LayoutNested); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	exists, err := afero.Exists(fs, "/out/public/tables/users.sql")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("expected /out/public/tables/users.sql to exist")
	}
}
