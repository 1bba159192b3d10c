package diff

import (
	"reflect"
	"testing"

	"github.com/pgterra/pgterra/internal/ir"
)

func privilege(object, grantee string, isGrant bool, kinds map[string][]string) *ir.Privilege {
	entries := map[string]*ir.PrivilegeEntry{}
	for name, cols := range kinds {
		set := map[string]struct{}{}
		for _, c := range cols {
			set[c] = struct{}{}
		}
		entries[name] = &ir.PrivilegeEntry{Name: name, Cols: set}
	}
	return &ir.Privilege{
		Id:         ir.PrivilegeId{Object: object, Grantee: grantee},
		Grantee:    grantee,
		IsGrant:    isGrant,
		Privileges: entries,
	}
}

// TestPlanPrivileges_ColumnSetNarrow reproduces spec.md §8 scenario S6:
// remote grants select(id, name) + delete(name); local wants
// select(id, temp) + update(name). Expected exactly four statements in
// order: REVOKE delete, GRANT update, REVOKE select (old cols), GRANT
// select (new cols).
func TestPlanPrivileges_ColumnSetNarrow(t *testing.T) {
	remote := map[string]*ir.Privilege{
		"public.test:test": privilege("public.test", "test", true, map[string][]string{
			"select": {"id", "name"},
			"delete": {"name"},
		}),
	}
	local := map[string]*ir.Privilege{
		"public.test:test": privilege("public.test", "test", true, map[string][]string{
			"select": {"id", "temp"},
			"update": {"name"},
		}),
	}

	diffs := PlanPrivileges(remote, local)
	if len(diffs) != 1 {
		t.Fatalf("PlanPrivileges() = %d diffs; want 1 (one changed pair)", len(diffs))
	}

	want := []string{
		"REVOKE delete (name) ON public.test FROM test",
		"GRANT update (name) ON public.test TO test",
		"REVOKE select (id, name) ON public.test FROM test",
		"GRANT select (id, temp) ON public.test TO test",
	}
	if got := diffs[0].Statements; !reflect.DeepEqual(got, want) {
		t.Errorf("Statements = %v; want %v", got, want)
	}
}

func TestPlanPrivileges_AddedAndRemoved(t *testing.T) {
	remote := map[string]*ir.Privilege{
		"public.orders:alice": privilege("public.orders", "alice", true, map[string][]string{"select": nil}),
	}
	local := map[string]*ir.Privilege{
		"public.users:bob": privilege("public.users", "bob", true, map[string][]string{"insert": nil}),
	}

	diffs := PlanPrivileges(remote, local)

	var created, dropped int
	for _, d := range diffs {
		switch d.Operation {
		case OpCreate:
			created++
		case OpDrop:
			dropped++
		}
	}
	if created != 1 || dropped != 1 {
		t.Errorf("created=%d dropped=%d; want 1/1", created, dropped)
	}
}
