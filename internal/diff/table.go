package diff

import (
	"fmt"

	"github.com/pgterra/pgterra/internal/ast"
	"github.com/pgterra/pgterra/internal/ir"
)

// PlanTables diffs the top-level CREATE TABLE objects. A changed table
// never recreates as a whole — it always resolves to a sequence of
// ALTER TABLE ADD/DROP/ALTER COLUMN and ADD/DROP CONSTRAINT statements
// against the surviving table (spec.md §4.5 "Table").
func PlanTables(old, new map[string]map[string]*ir.Table) []Diff {
	oldFlat, newFlat := flattenTables(old), flattenTables(new)

	var diffs []Diff
	for id, n := range newFlat {
		o, existed := oldFlat[id]
		if !existed {
			diffs = append(diffs, Diff{Type: ObjectTable, Operation: OpCreate, Identity: id, Statements: []string{n.CanonicalSQL()}})
			continue
		}
		if stmts := diffTableBody(o, n); len(stmts) > 0 {
			diffs = append(diffs, Diff{Type: ObjectTable, Operation: OpAlter, Identity: id, Statements: stmts})
		}
	}
	for id, o := range oldFlat {
		if _, stillExists := newFlat[id]; !stillExists {
			diffs = append(diffs, Diff{Type: ObjectTable, Operation: OpDrop, Identity: id, Statements: o.Revert()})
		}
	}
	return diffs
}

func flattenTables(m map[string]map[string]*ir.Table) map[string]*ir.Table {
	out := map[string]*ir.Table{}
	for _, bucket := range m {
		for _, t := range bucket {
			out[t.ID().String()] = t
		}
	}
	return out
}

// diffTableBody compares two versions of the same table and renders every
// column and inline-constraint change as one ALTER TABLE statement each,
// in add-then-alter-then-drop order for columns followed by the same for
// constraints — additions before removals keeps a NOT NULL column that
// replaces another satisfiable at every point in the sequence.
func diffTableBody(old, new *ir.Table) []string {
	var stmts []string
	table := new.Id.String()

	oldCols, newCols := old.ColumnMap(), new.ColumnMap()
	colDelta := Calculate(oldCols, newCols, func(o *ir.Column, newFullId string) string {
		return o.WithName(newFullId[lastDot(newFullId)+1:]).Canonical
	})
	for _, p := range colDelta.Renamed {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			table, ast.QuoteIdentifier(p.Old.Id.Name), ast.QuoteIdentifier(p.New.Id.Name)))
	}
	for _, col := range colDelta.Added {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, col.CanonicalSQL()))
	}
	for _, p := range colDelta.Changed {
		stmts = append(stmts, diffColumn(table, p.Old, p.New)...)
	}
	for _, col := range colDelta.Removed {
		stmts = append(stmts, col.Revert()...)
	}

	oldCons, newCons := old.ConstraintMap(), new.ConstraintMap()
	consDelta := Calculate(oldCons, newCons, func(o *ir.Constraint, newFullId string) string {
		return o.WithName(newFullId[lastDot(newFullId)+1:]).Canonical
	})
	for _, p := range consDelta.Renamed {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE ONLY %s RENAME CONSTRAINT %s TO %s",
			table, ast.QuoteIdentifier(p.Old.Name), ast.QuoteIdentifier(p.New.Name)))
	}
	for _, c := range consDelta.Added {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE ONLY %s ADD CONSTRAINT %s %s", table, ast.QuoteIdentifier(c.Name), c.Canonical))
	}
	for _, p := range consDelta.Changed {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE ONLY %s DROP CONSTRAINT %s", table, ast.QuoteIdentifier(p.Old.Name)))
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE ONLY %s ADD CONSTRAINT %s %s", table, ast.QuoteIdentifier(p.New.Name), p.New.Canonical))
	}
	for _, c := range consDelta.Removed {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE ONLY %s DROP CONSTRAINT %s", table, ast.QuoteIdentifier(c.Name)))
	}

	return stmts
}

// diffColumn renders the minimal ALTER COLUMN statements for a changed
// column, falling back to DROP+ADD only when the column gained or lost an
// identity (not expressible as an ALTER, spec.md §4.5 "Column"); a change
// between ALWAYS and BY DEFAULT is not compared.
func diffColumn(table string, old, new *ir.Column) []string {
	if (old.Identity == nil) != (new.Identity == nil) {
		return append(old.Revert(), fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, new.CanonicalSQL()))
	}

	var stmts []string
	col := ast.QuoteIdentifier(new.Id.Name)

	if old.DataType != new.DataType {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s", table, col, new.DataType, col, new.DataType))
	}
	if old.Nullable != new.Nullable {
		if new.Nullable {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, col))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, col))
		}
	}

	oldHasDefault := old.Default != nil
	newHasDefault := new.Default != nil
	switch {
	case oldHasDefault && !newHasDefault:
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, col))
	case newHasDefault && (!oldHasDefault || old.Default.Canonical != new.Default.Canonical):
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET %s", table, col, new.Default.Canonical))
	}

	return stmts
}
