package ir

import (
	"strings"
	"testing"
)

func TestLoad_SimpleTable(t *testing.T) {
	sql := `CREATE TABLE public.users (
		id bigint PRIMARY KEY,
		email text NOT NULL,
		created_at timestamp with time zone
	);`

	schema, err := Load(sql)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	bucket, ok := schema.Tables["public"]
	if !ok {
		t.Fatalf("schema.Tables has no \"public\" bucket; got %+v", schema.Tables)
	}
	table, ok := bucket["users"]
	if !ok {
		t.Fatalf("schema.Tables[\"public\"] has no \"users\" entry")
	}
	if table.Columns.Len() != 3 {
		t.Errorf("table.Columns.Len() = %d; want 3", table.Columns.Len())
	}
	if _, ok := table.Columns.Get("email"); !ok {
		t.Errorf("expected column %q", "email")
	}
}

func TestLoad_MultipleTablesAndView(t *testing.T) {
	sql := `
		CREATE TABLE public.orders (id bigint PRIMARY KEY, total numeric(10,2));
		CREATE VIEW public.big_orders AS SELECT * FROM public.orders WHERE total > 100;
	`

	schema, err := Load(sql)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, ok := schema.Tables["public"]["orders"]; !ok {
		t.Error("expected table public.orders")
	}
	if _, ok := schema.Views["public"]["big_orders"]; !ok {
		t.Error("expected view public.big_orders")
	}
}

func TestLoad_ParseErrorSurfacesVerbatim(t *testing.T) {
	_, err := Load("CREATE TBLE public.broken (id int);")
	if err == nil {
		t.Fatal("expected a parse error for malformed SQL, got nil")
	}
	if !strings.Contains(err.Error(), "CREATE TBLE public.broken") {
		t.Errorf("parse error %q does not include the offending SQL", err.Error())
	}
}

func TestLoad_EnumType(t *testing.T) {
	sql := `CREATE TYPE public.status AS ENUM ('pending', 'active', 'done');`

	schema, err := Load(sql)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	enum, ok := schema.EnumTypes["public"]["status"]
	if !ok {
		t.Fatalf("expected enum type public.status")
	}
	if !enum.HasItem("active") {
		t.Errorf("expected enum to contain %q", "active")
	}
	if enum.HasItem("missing") {
		t.Errorf("did not expect enum to contain %q", "missing")
	}
}
