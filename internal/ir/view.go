package ir

import "github.com/pgterra/pgterra/internal/ast"

// View is a `CREATE VIEW` object; its definition is opaque and equality is
// purely by canonical SQL (spec.md §3).
type View struct {
	Id        ast.SchemaId
	Canonical string
}

func (v *View) ID() ast.Id          { return v.Id }
func (v *View) TypeName() string    { return "view" }
func (v *View) CanonicalSQL() string { return v.Canonical }
func (v *View) Revert() []string    { return []string{"DROP VIEW " + v.Id.String()} }

// MatView is `CREATE MATERIALIZED VIEW` / `CREATE TABLE ... AS`.
type MatView struct {
	Id        ast.SchemaId
	Canonical string
}

func (v *MatView) ID() ast.Id          { return v.Id }
func (v *MatView) TypeName() string    { return "materialized view" }
func (v *MatView) CanonicalSQL() string { return v.Canonical }
func (v *MatView) Revert() []string {
	return []string{"DROP MATERIALIZED VIEW " + v.Id.String()}
}
