package ir

import (
	"sort"

	"github.com/pgterra/pgterra/internal/ast"
)

// Schema is an immutable snapshot of a database's declared schema, as
// produced by the Loader from either a local .sql tree or a remote dump
// (spec.md §3 "Schema snapshot"). Every map's iteration order is made
// deterministic at the call site (sorted by key) since stable order is an
// invariant, not an incidental property (spec.md §9 "Set/map ordering").
//
// Function buckets are keyed by overload signature ("name(argtypes)"),
// not bare name, because Function identity includes the argument-type
// tuple (spec.md §3). Every other by-name bucket is keyed by bare name.
type Schema struct {
	CompositeTypes map[string]map[string]*CompositeType
	EnumTypes      map[string]map[string]*EnumType
	Sequences      map[string]map[string]*Sequence
	Tables         map[string]map[string]*Table
	Views          map[string]map[string]*View
	MatViews       map[string]map[string]*MatView
	Functions      map[string]map[string]*Function

	TableIndexes     map[ast.SchemaId]map[string]*TableIndex
	TableConstraints map[ast.SchemaId]map[string]*TableConstraint
	TableSequences   map[ast.SchemaId]map[string]*TableSequence
	TableTriggers    map[ast.SchemaId]map[string]*Trigger
	TablePolicies    map[ast.SchemaId]map[string]*TablePolicy

	TableRls    map[ast.SchemaId]*TableRls
	TableOwners map[ast.SchemaId]*TableOwner

	Privileges map[string]*Privilege

	// Schemas is the sorted set of every schema name seen across every
	// bucket above; computed once by the Loader after ingestion.
	Schemas []string
}

// NewSchema returns an empty snapshot with every bucket initialized.
func NewSchema() *Schema {
	return &Schema{
		CompositeTypes:   map[string]map[string]*CompositeType{},
		EnumTypes:        map[string]map[string]*EnumType{},
		Sequences:        map[string]map[string]*Sequence{},
		Tables:           map[string]map[string]*Table{},
		Views:            map[string]map[string]*View{},
		MatViews:         map[string]map[string]*MatView{},
		Functions:        map[string]map[string]*Function{},
		TableIndexes:     map[ast.SchemaId]map[string]*TableIndex{},
		TableConstraints: map[ast.SchemaId]map[string]*TableConstraint{},
		TableSequences:   map[ast.SchemaId]map[string]*TableSequence{},
		TableTriggers:    map[ast.SchemaId]map[string]*Trigger{},
		TablePolicies:    map[ast.SchemaId]map[string]*TablePolicy{},
		TableRls:         map[ast.SchemaId]*TableRls{},
		TableOwners:      map[ast.SchemaId]*TableOwner{},
		Privileges:       map[string]*Privilege{},
	}
}

// computeSchemas derives the Schemas set from the union of every bucket's
// schema keys, sorted for deterministic iteration.
func (s *Schema) computeSchemas() {
	seen := map[string]struct{}{}
	for _, m := range []map[string]map[string]*CompositeType{s.CompositeTypes} {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	for k := range s.EnumTypes {
		seen[k] = struct{}{}
	}
	for k := range s.Sequences {
		seen[k] = struct{}{}
	}
	for k := range s.Tables {
		seen[k] = struct{}{}
	}
	for k := range s.Views {
		seen[k] = struct{}{}
	}
	for k := range s.MatViews {
		seen[k] = struct{}{}
	}
	for k := range s.Functions {
		seen[k] = struct{}{}
	}
	for id := range s.TableIndexes {
		seen[id.Schema] = struct{}{}
	}
	for id := range s.TableConstraints {
		seen[id.Schema] = struct{}{}
	}
	for id := range s.TableSequences {
		seen[id.Schema] = struct{}{}
	}
	for id := range s.TableTriggers {
		seen[id.Schema] = struct{}{}
	}
	for id := range s.TablePolicies {
		seen[id.Schema] = struct{}{}
	}
	for id := range s.TableRls {
		seen[id.Schema] = struct{}{}
	}
	for id := range s.TableOwners {
		seen[id.Schema] = struct{}{}
	}

	schemas := make([]string, 0, len(seen))
	for k := range seen {
		schemas = append(schemas, k)
	}
	sort.Strings(schemas)
	s.Schemas = schemas
}

// SortedKeys returns a map's keys in sorted order, used everywhere the
// engine must iterate a map deterministically.
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
