package ir

import "github.com/pgterra/pgterra/internal/ast"

// CompositeType is a `CREATE TYPE ... AS (...)` object.
type CompositeType struct {
	Id        ast.SchemaId
	Canonical string
}

func (t *CompositeType) ID() ast.Id        { return t.Id }
func (t *CompositeType) TypeName() string  { return "composite type" }
func (t *CompositeType) CanonicalSQL() string { return t.Canonical }

func (t *CompositeType) Revert() []string {
	return []string{"DROP TYPE " + t.Id.String() + " CASCADE"}
}
