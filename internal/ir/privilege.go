package ir

import (
	"sort"
	"strings"

	"github.com/pgterra/pgterra/internal/ast"
)

// TargetType distinguishes a GRANT on a single named object from one
// applied to every object of a kind in a schema (`GRANT ... ON ALL TABLES
// IN SCHEMA ...`).
type TargetType int

const (
	TargetObject TargetType = iota
	TargetAllInSchema
)

// ObjectType is the kind of thing being granted on.
type ObjectType int

const (
	ObjectTable ObjectType = iota
	ObjectSchema
)

// PrivilegeId is "objectname:grantee" (spec.md §3) — the one identity in
// this model that isn't a SchemaId/RelationId, since a grant is identified
// by the (object, grantee) pair rather than by schema-qualified name alone.
type PrivilegeId struct {
	Object  string
	Grantee string
}

func (id PrivilegeId) isId() {}
func (id PrivilegeId) String() string { return id.Object + ":" + id.Grantee }

// PrivilegeEntry is one granted privilege kind with its column list (empty
// Cols means "whole object", not "no columns").
type PrivilegeEntry struct {
	Name string
	Cols map[string]struct{}
}

// SortedCols returns Cols in sorted order for deterministic rendering.
func (e *PrivilegeEntry) SortedCols() []string {
	cols := make([]string, 0, len(e.Cols))
	for c := range e.Cols {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Privilege is a `GRANT`/`REVOKE` object. Multiple GRANTs against the same
// (object, grantee) pair merge their Privileges maps at load time (spec.md
// §4.2).
type Privilege struct {
	Id         PrivilegeId
	TargetType TargetType
	ObjType    ObjectType
	Grantee    string
	IsGrant    bool
	Privileges map[string]*PrivilegeEntry
}

func (p *Privilege) ID() ast.Id       { return p.Id }
func (p *Privilege) TypeName() string { return "privilege" }

func (p *Privilege) CanonicalSQL() string {
	var b strings.Builder
	verb := "GRANT"
	prep := "TO"
	if !p.IsGrant {
		verb = "REVOKE"
		prep = "FROM"
	}
	names := make([]string, 0, len(p.Privileges))
	for n := range p.Privileges {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		e := p.Privileges[n]
		if len(e.Cols) > 0 {
			parts = append(parts, n+"("+strings.Join(e.SortedCols(), ", ")+")")
		} else {
			parts = append(parts, n)
		}
	}
	b.WriteString(verb + " " + strings.Join(parts, ", ") + " ON TABLE " + p.Id.Object + " " + prep + " " + p.Grantee)
	return b.String()
}

// Revert flips IsGrant only, per spec.md §4.1 (`GRANT ... TO u` <-> `REVOKE
// ... FROM u`).
func (p *Privilege) Revert() []string {
	flipped := &Privilege{
		Id:         p.Id,
		TargetType: p.TargetType,
		ObjType:    p.ObjType,
		Grantee:    p.Grantee,
		IsGrant:    !p.IsGrant,
		Privileges: p.Privileges,
	}
	return []string{flipped.CanonicalSQL()}
}
