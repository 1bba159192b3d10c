package diff

import (
	"strings"
	"testing"

	"github.com/pgterra/pgterra/internal/ast"
)

// fakeNode is a minimal ir.Node for exercising Calculate without pulling
// in the full object model.
type fakeNode struct {
	id  string
	sql string
}

func (f fakeNode) ID() ast.Id          { return ast.NewSchemaId("public", f.id) }
func (f fakeNode) TypeName() string    { return "fake" }
func (f fakeNode) CanonicalSQL() string { return f.sql }
func (f fakeNode) Revert() []string    { return []string{"DROP FAKE " + f.id} }

func TestCalculate_AddedRemovedChanged(t *testing.T) {
	old := map[string]fakeNode{
		"a": {id: "a", sql: "CREATE FAKE a (x int)"},
		"b": {id: "b", sql: "CREATE FAKE b (y int)"},
	}
	new := map[string]fakeNode{
		"a": {id: "a", sql: "CREATE FAKE a (x int, z int)"}, // changed
		"c": {id: "c", sql: "CREATE FAKE c (w int)"},        // added
		// b removed
	}

	d := Calculate(old, new, nil)

	if len(d.Added) != 1 || d.Added[0].id != "c" {
		t.Errorf("Added = %+v; want [c]", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0].id != "b" {
		t.Errorf("Removed = %+v; want [b]", d.Removed)
	}
	if len(d.Changed) != 1 || d.Changed[0].New.id != "a" {
		t.Errorf("Changed = %+v; want [a]", d.Changed)
	}
	if len(d.Renamed) != 0 {
		t.Errorf("Renamed = %+v; want none (no rename func supplied)", d.Renamed)
	}
}

func TestCalculate_RenameDetection(t *testing.T) {
	old := map[string]fakeNode{
		"old_name": {id: "old_name", sql: "CREATE FAKE old_name (x int)"},
	}
	new := map[string]fakeNode{
		"new_name": {id: "new_name", sql: "CREATE FAKE new_name (x int)"},
	}

	renameCanonical := func(obj fakeNode, newName string) string {
		suffix := newName[strings.LastIndex(newName, ".")+1:]
		return "CREATE FAKE " + suffix + " (x int)"
	}

	d := Calculate(old, new, renameCanonical)

	if len(d.Added) != 0 || len(d.Removed) != 0 {
		t.Errorf("expected rename to absorb added/removed, got added=%+v removed=%+v", d.Added, d.Removed)
	}
	if len(d.Renamed) != 1 {
		t.Fatalf("Renamed = %+v; want exactly one pair", d.Renamed)
	}
	if d.Renamed[0].Old.id != "old_name" || d.Renamed[0].New.id != "new_name" {
		t.Errorf("Renamed pair = %+v; want old_name -> new_name", d.Renamed[0])
	}
}

func TestCalculate_NoRenameWhenMultipleAddedRemoved(t *testing.T) {
	old := map[string]fakeNode{
		"a": {id: "a", sql: "CREATE FAKE a ()"},
		"b": {id: "b", sql: "CREATE FAKE b ()"},
	}
	new := map[string]fakeNode{
		"c": {id: "c", sql: "CREATE FAKE c ()"},
		"d": {id: "d", sql: "CREATE FAKE d ()"},
	}

	renameCanonical := func(obj fakeNode, newName string) string { return obj.sql }

	d := Calculate(old, new, renameCanonical)

	if len(d.Renamed) != 0 {
		t.Errorf("Renamed = %+v; want none when more than one candidate exists", d.Renamed)
	}
	if len(d.Added) != 2 || len(d.Removed) != 2 {
		t.Errorf("Added/Removed = %+v/%+v; want 2/2", d.Added, d.Removed)
	}
}
