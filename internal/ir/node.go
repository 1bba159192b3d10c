// Package ir is the Object Model (spec.md §3): strongly typed variants for
// every schema object the planner understands, each with a stable Id, a
// canonical render, and the ability to produce its own inverse DDL. It also
// owns the Loader (spec.md §4.2), which assembles a Schema snapshot from a
// bag of parsed statements.
package ir

import "github.com/pgterra/pgterra/internal/ast"

// Node is the capability every object variant has, and the only thing the
// rest of the engine (Node Differ, Delta Calculator, Migration Planner)
// requires of it. Per spec.md §9 "Polymorphism", this is deliberately a
// small, closed capability interface rather than an open-ended inheritance
// graph — each variant's drop/create/alter logic lives next to the variant
// in package diff, not behind virtual dispatch through this interface.
type Node interface {
	// ID returns the object's stable identity.
	ID() ast.Id
	// TypeName is a static diagnostic label, e.g. "table", "function".
	TypeName() string
	// CanonicalSQL is the deparsed, fixed-format string form used as the
	// sole equality witness between two objects of the same variant.
	CanonicalSQL() string
	// Revert produces the inverse DDL emitted when this object is dropped.
	Revert() []string
}
