// Package ast wraps the externally supplied PostgreSQL parse tree
// (github.com/pganalyze/pg_query_go) and exposes the handful of operations
// the rest of the engine needs from it: splitting and parsing raw SQL,
// deparsing a node back to SQL, canonical type names, and stable object
// identity. No package outside ast touches pg_query_go's protobuf types
// directly.
package ast

import "fmt"

// Id locates an object within a Schema snapshot. The two concrete
// implementations are SchemaId (top-level objects) and RelationId (objects
// owned by a relation: indexes, constraints, triggers, policies, the
// sequence linked to a column default).
type Id interface {
	fmt.Stringer
	isId()
}

// SchemaId identifies a top-level object by schema and name.
type SchemaId struct {
	Schema string
	Name   string
}

// NewSchemaId normalizes an empty schema to "public".
func NewSchemaId(schema, name string) SchemaId {
	if schema == "" {
		schema = "public"
	}
	return SchemaId{Schema: schema, Name: name}
}

func (id SchemaId) isId() {}

func (id SchemaId) String() string {
	return id.Schema + "." + id.Name
}

// RelationId identifies an object owned by a relation (table or view):
// an index, constraint, trigger, policy, or the sequence feeding a column
// default.
type RelationId struct {
	SchemaId SchemaId
	Name     string
}

// NewRelationId builds a RelationId from the owning relation's schema and
// name plus the owned object's own name.
func NewRelationId(relSchema, relName, ownedName string) RelationId {
	return RelationId{SchemaId: NewSchemaId(relSchema, relName), Name: ownedName}
}

func (id RelationId) isId() {}

func (id RelationId) String() string {
	return id.SchemaId.String() + "." + id.Name
}
