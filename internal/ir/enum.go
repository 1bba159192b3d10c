package ir

import "github.com/pgterra/pgterra/internal/ast"

// EnumType is a `CREATE TYPE ... AS ENUM (...)` object. Items are kept in
// declaration order (spec.md §3): the planner's alter logic depends on set
// difference and cardinality, not position, but the order still matters
// for CanonicalSQL.
type EnumType struct {
	Id        ast.SchemaId
	Items     []string
	Canonical string
}

func (t *EnumType) ID() ast.Id         { return t.Id }
func (t *EnumType) TypeName() string   { return "enum type" }
func (t *EnumType) CanonicalSQL() string { return t.Canonical }

func (t *EnumType) Revert() []string {
	return []string{"DROP TYPE " + t.Id.String() + " CASCADE"}
}

// HasItem reports whether label is one of the enum's declared values.
func (t *EnumType) HasItem(label string) bool {
	for _, v := range t.Items {
		if v == label {
			return true
		}
	}
	return false
}
