// Package diff computes the ordered set of DDL statements that carry a
// remote schema snapshot to match a local one (spec.md §4). It is built in
// four layers: the Node Differ decides whether two same-identity objects
// changed at all; the Delta Calculator partitions a homogeneous collection
// into added/removed/changed (with rename detection); the Migration
// Planner renders one object's change into DDL; the Schema Planner drives
// all of the above across every object category in a fixed order.
package diff

import (
	"encoding/json"
	"fmt"
)

// ObjectType names the category of database object a Diff touches. Kept
// distinct from ir.Node.TypeName() (a display label) since this value is
// also the lookup key for the Schema Planner's fixed category order.
type ObjectType int

const (
	ObjectSchema ObjectType = iota
	ObjectCompositeType
	ObjectEnumType
	ObjectSequence
	ObjectTable
	ObjectTableSequence
	ObjectTableConstraint
	ObjectTableIndex
	ObjectTablePolicy
	ObjectTableRLS
	ObjectTableOwner
	ObjectView
	ObjectMatView
	ObjectFunction
	ObjectTrigger
	ObjectPrivilege
)

func (o ObjectType) String() string {
	switch o {
	case ObjectSchema:
		return "schema"
	case ObjectCompositeType:
		return "composite_type"
	case ObjectEnumType:
		return "enum_type"
	case ObjectSequence:
		return "sequence"
	case ObjectTable:
		return "table"
	case ObjectTableSequence:
		return "table_sequence"
	case ObjectTableConstraint:
		return "table_constraint"
	case ObjectTableIndex:
		return "table_index"
	case ObjectTablePolicy:
		return "table_policy"
	case ObjectTableRLS:
		return "table_rls"
	case ObjectTableOwner:
		return "table_owner"
	case ObjectView:
		return "view"
	case ObjectMatView:
		return "materialized_view"
	case ObjectFunction:
		return "function"
	case ObjectTrigger:
		return "trigger"
	case ObjectPrivilege:
		return "privilege"
	default:
		return "unknown"
	}
}

func (o ObjectType) MarshalJSON() ([]byte, error) { return json.Marshal(o.String()) }

// Operation is the kind of change a Diff represents.
type Operation int

const (
	OpCreate Operation = iota
	OpAlter
	OpDrop
	// OpRecreate marks a Diff whose statements are a drop followed by a
	// create of the same object (the fallback when no in-place ALTER
	// exists) — rendered as a modification in summaries, not a destruction.
	OpRecreate
)

func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpAlter:
		return "alter"
	case OpDrop:
		return "drop"
	case OpRecreate:
		return "recreate"
	default:
		return "unknown"
	}
}

func (o Operation) MarshalJSON() ([]byte, error) { return json.Marshal(o.String()) }

// Diff is one object's change, rendered as one or more ordered SQL
// statements (a multi-statement Diff happens when, e.g., an enum gets two
// new labels or a drop+create pair is emitted for one object).
type Diff struct {
	Type       ObjectType `json:"type"`
	Operation  Operation  `json:"operation"`
	Identity   string     `json:"identity"`
	Statements []string   `json:"statements"`
}

func (d Diff) String() string {
	return fmt.Sprintf("%s %s %s", d.Operation, d.Type, d.Identity)
}
