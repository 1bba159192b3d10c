package diff

import (
	"testing"

	"github.com/pgterra/pgterra/internal/ir"
)

func load(t *testing.T, sql string) *ir.Schema {
	t.Helper()
	schema, err := ir.Load(sql)
	if err != nil {
		t.Fatalf("ir.Load() error = %v", err)
	}
	return schema
}

func TestPlan_NoChanges(t *testing.T) {
	sql := `CREATE TABLE public.users (id bigint PRIMARY KEY, email text);`
	old, new := load(t, sql), load(t, sql)

	diffs := Plan(old, new)
	if len(diffs) != 0 {
		t.Errorf("Plan() with identical schemas = %+v; want no diffs", diffs)
	}
}

func TestPlan_AddedTable(t *testing.T) {
	old := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY);`)
	new := load(t, `
		CREATE TABLE public.users (id bigint PRIMARY KEY);
		CREATE TABLE public.orders (id bigint PRIMARY KEY);
	`)

	diffs := Plan(old, new)
	summary := Summarize(diffs)
	added, altered, dropped := summary.Totals()

	if added != 1 || altered != 0 || dropped != 0 {
		t.Errorf("Totals() = (%d,%d,%d); want (1,0,0)", added, altered, dropped)
	}
}

func TestPlan_DroppedTable(t *testing.T) {
	old := load(t, `
		CREATE TABLE public.users (id bigint PRIMARY KEY);
		CREATE TABLE public.orders (id bigint PRIMARY KEY);
	`)
	new := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY);`)

	diffs := Plan(old, new)
	summary := Summarize(diffs)
	_, _, dropped := summary.Totals()

	if dropped != 1 {
		t.Errorf("Totals() dropped = %d; want 1", dropped)
	}
}

func TestPlan_CreatesAndDropsSchemas(t *testing.T) {
	old := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY);`)
	new := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY); CREATE TABLE app.widgets (id bigint PRIMARY KEY);`)

	forward := Plan(old, new)
	var createsAppSchema bool
	for _, d := range forward {
		if d.Type == ObjectSchema && d.Operation == OpCreate && d.Identity == "app" {
			createsAppSchema = true
		}
	}
	if !createsAppSchema {
		t.Errorf("Plan(old, new) = %+v; want a CREATE SCHEMA diff for \"app\"", forward)
	}

	backward := Plan(new, old)
	var dropsAppSchema bool
	for _, d := range backward {
		if d.Type == ObjectSchema && d.Operation == OpDrop && d.Identity == "app" {
			dropsAppSchema = true
		}
	}
	if !dropsAppSchema {
		t.Errorf("Plan(new, old) = %+v; want a DROP SCHEMA diff for \"app\"", backward)
	}
}

func TestPlan_IsIdempotentAfterApply(t *testing.T) {
	// spec.md §8 "apply-then-replan fixed point": planning old -> new and
	// then replanning new -> new must yield no further diffs.
	old := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY);`)
	new := load(t, `
		CREATE TABLE public.users (id bigint PRIMARY KEY);
		CREATE VIEW public.all_users AS SELECT * FROM public.users;
	`)

	firstPass := Plan(old, new)
	if len(firstPass) == 0 {
		t.Fatal("expected at least one diff between old and new")
	}

	secondPass := Plan(new, new)
	if len(secondPass) != 0 {
		t.Errorf("Plan(new, new) = %+v; want no diffs (idempotent planning)", secondPass)
	}
}
