package diff

import (
	"strings"
	"testing"
)

func TestPlanTables_RenameColumn(t *testing.T) {
	old := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY, email text);`)
	new := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY, email_address text);`)

	diffs := Plan(old, new)
	found := false
	for _, d := range diffs {
		for _, stmt := range d.Statements {
			if strings.Contains(stmt, "RENAME COLUMN") {
				found = true
				if !strings.Contains(stmt, "email") || !strings.Contains(stmt, "email_address") {
					t.Errorf("RENAME COLUMN statement = %q; want old and new names present", stmt)
				}
			}
		}
	}
	if !found {
		t.Errorf("Plan() = %+v; want a RENAME COLUMN statement", diffs)
	}
}

func TestPlanTables_TypeChangeIsNotTreatedAsRename(t *testing.T) {
	old := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY, age integer);`)
	new := load(t, `CREATE TABLE public.users (id bigint PRIMARY KEY, age bigint);`)

	diffs := Plan(old, new)
	for _, d := range diffs {
		for _, stmt := range d.Statements {
			if strings.Contains(stmt, "RENAME COLUMN") {
				t.Errorf("unexpected RENAME COLUMN for a type-only change: %q", stmt)
			}
		}
	}
}
