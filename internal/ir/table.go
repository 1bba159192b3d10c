package ir

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pgterra/pgterra/internal/ast"
)

// ConstraintKind enumerates the constraint flavors the engine recognizes.
type ConstraintKind int

const (
	ConstraintUnknown ConstraintKind = iota
	ConstraintPrimary
	ConstraintUnique
	ConstraintCheck
	ConstraintForeign
	ConstraintNotNull
	ConstraintDefault
	ConstraintExclusion
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintPrimary:
		return "PRIMARY"
	case ConstraintUnique:
		return "UNIQUE"
	case ConstraintCheck:
		return "CHECK"
	case ConstraintForeign:
		return "FOREIGN"
	case ConstraintNotNull:
		return "NOTNULL"
	case ConstraintDefault:
		return "DEFAULT"
	case ConstraintExclusion:
		return "EXCLUSION"
	default:
		return "UNKNOWN"
	}
}

// Constraint is a sub-object owned by a Table: either an inline
// column-level constraint or a table-level one declared inside the
// CREATE TABLE body (spec.md §3). Top-level `ALTER TABLE ... ADD
// CONSTRAINT` statements produce a TableConstraint instead. Id identifies
// it for the Delta Calculator the same way every other owned object is
// identified, by the owning table's RelationId.
type Constraint struct {
	Id        ast.RelationId
	Name      string
	Kind      ConstraintKind
	Canonical string
}

func (c *Constraint) ID() ast.Id          { return c.Id }
func (c *Constraint) TypeName() string    { return "constraint" }
func (c *Constraint) CanonicalSQL() string { return c.Canonical }
func (c *Constraint) Revert() []string {
	return []string{"ALTER TABLE ONLY " + c.Id.SchemaId.String() + " DROP CONSTRAINT " + ast.QuoteIdentifier(c.Name)}
}

// WithName returns a copy of c as if it had been declared under a
// different name — used by the rename-detection heuristic (spec.md §4.5
// "Column Constraint" rule, §9).
func (c *Constraint) WithName(name string) *Constraint {
	return &Constraint{
		Id:        ast.NewRelationId(c.Id.SchemaId.Schema, c.Id.SchemaId.Name, name),
		Name:      name,
		Kind:      c.Kind,
		Canonical: renameInSQL(c.Canonical, c.Name, name),
	}
}

// renameInSQL substitutes old for new via a plain string replace. spec.md
// §9 flags this as a known limitation: it can match spuriously if the
// constraint body happens to mention the old name elsewhere (e.g. in a
// CHECK expression referencing a column of the same name).
func renameInSQL(sql, old, new string) string {
	if old == "" || old == new {
		return sql
	}
	return strings.ReplaceAll(sql, old, new)
}

// Identity represents PostgreSQL identity column configuration
// (GENERATED { ALWAYS | BY DEFAULT } AS IDENTITY).
type Identity struct {
	Generation string // "ALWAYS" or "BY DEFAULT"
}

// Column is a sub-object owned by a Table, keyed within it by name.
type Column struct {
	Id               ast.RelationId
	DataType         string // CanonicalTypeName form
	Nullable         bool
	Default          *Constraint // the DEFAULT constraint, if any
	OtherConstraints []*Constraint
	Identity         *Identity
	Canonical        string
}

func (c *Column) ID() ast.Id          { return c.Id }
func (c *Column) TypeName() string    { return "column" }
func (c *Column) CanonicalSQL() string { return c.Canonical }
func (c *Column) Revert() []string {
	return []string{"ALTER TABLE " + c.Id.SchemaId.String() + " DROP COLUMN " + ast.QuoteIdentifier(c.Id.Name)}
}

// WithName returns a copy of c as if it had been declared under a
// different name — the column analog of Constraint.WithName, used by the
// same rename-detection heuristic (spec.md §4.5 "Column" rename rule).
func (c *Column) WithName(name string) *Column {
	renamed := *c
	renamed.Id = ast.NewRelationId(c.Id.SchemaId.Schema, c.Id.SchemaId.Name, name)
	renamed.Canonical = renameInSQL(c.Canonical, ast.QuoteIdentifier(c.Id.Name), ast.QuoteIdentifier(name))
	return &renamed
}

// Table is a `CREATE TABLE` object. Columns and Constraints preserve
// source declaration order — a load-time invariant (spec.md §3) — via
// wk8/go-ordered-map, matching how denisvmedia/inventario keeps its own
// registries order-stable.
type Table struct {
	Id          ast.SchemaId
	Columns     *orderedmap.OrderedMap[string, *Column]
	Constraints *orderedmap.OrderedMap[string, *Constraint]
	Canonical   string
}

// NewTable returns an empty Table ready to have columns/constraints
// appended in source order.
func NewTable(id ast.SchemaId) *Table {
	return &Table{
		Id:          id,
		Columns:     orderedmap.New[string, *Column](),
		Constraints: orderedmap.New[string, *Constraint](),
	}
}

func (t *Table) ID() ast.Id          { return t.Id }
func (t *Table) TypeName() string    { return "table" }
func (t *Table) CanonicalSQL() string { return t.Canonical }
func (t *Table) Revert() []string {
	return []string{"DROP TABLE " + t.Id.String()}
}

// ColumnMap flattens Columns into a plain map for the Delta Calculator,
// which is agnostic to ordering (ordering only matters for rendering).
func (t *Table) ColumnMap() map[string]*Column {
	out := make(map[string]*Column, t.Columns.Len())
	for pair := t.Columns.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

// ConstraintMap flattens Constraints into a plain map for the Delta
// Calculator.
func (t *Table) ConstraintMap() map[string]*Constraint {
	out := make(map[string]*Constraint, t.Constraints.Len())
	for pair := t.Constraints.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}
