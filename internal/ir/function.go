package ir

import (
	"strings"

	"github.com/pgterra/pgterra/internal/ast"
)

// Arg is one positional argument of a Function. Names are carried for
// display but are explicitly excluded from identity (spec.md §3): Postgres
// allows overloading on type alone, and a caller may rename an argument
// without changing the overload.
type Arg struct {
	Name string
	Type string // CanonicalTypeName form
}

// Function is a `CREATE FUNCTION` object. Id.Name is the bare function
// name; overload identity additionally depends on ArgTypes, which the
// Schema buckets this object under (see Signature).
type Function struct {
	Id         ast.SchemaId
	Args       []Arg
	ReturnType string
	Canonical  string
}

func (f *Function) ID() ast.Id          { return f.Id }
func (f *Function) TypeName() string    { return "function" }
func (f *Function) CanonicalSQL() string { return f.Canonical }

func (f *Function) Revert() []string {
	return []string{"DROP FUNCTION " + f.Id.String() + "(" + f.ArgTypeList() + ")"}
}

// ArgTypeList renders the comma-joined canonical argument types, used both
// for Signature and for DROP FUNCTION's required type list.
func (f *Function) ArgTypeList() string {
	types := make([]string, len(f.Args))
	for i, a := range f.Args {
		types[i] = a.Type
	}
	return strings.Join(types, ", ")
}

// Signature is the map key Function objects are stored under within a
// Schema: "name(argtype1, argtype2)", so two overloads of the same name
// are distinct entries at load time and in duplicate detection (spec.md
// §3, §4.2). diff.PlanFunctions re-keys functions by bare schema.name
// before running the Delta Calculator.
func (f *Function) Signature() string {
	return f.Id.Name + "(" + f.ArgTypeList() + ")"
}

// SameOverload reports whether f and other share an argument-type tuple
// and return type — the condition under which the Migration Planner can
// use CREATE OR REPLACE instead of DROP+CREATE (spec.md §4.5).
func (f *Function) SameOverload(other *Function) bool {
	return f.ArgTypeList() == other.ArgTypeList() && f.ReturnType == other.ReturnType
}
