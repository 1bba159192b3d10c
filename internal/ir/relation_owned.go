package ir

import "github.com/pgterra/pgterra/internal/ast"

// Trigger is a `CREATE TRIGGER` object owned by a relation.
type Trigger struct {
	Id        ast.RelationId
	Canonical string
}

func (t *Trigger) ID() ast.Id          { return t.Id }
func (t *Trigger) TypeName() string    { return "trigger" }
func (t *Trigger) CanonicalSQL() string { return t.Canonical }
func (t *Trigger) Revert() []string {
	return []string{"DROP TRIGGER " + ast.QuoteIdentifier(t.Id.Name) + " ON " + t.Id.SchemaId.String()}
}

// TablePolicy is a `CREATE POLICY` row-level-security policy.
type TablePolicy struct {
	Id         ast.RelationId
	Command    string // ALL, SELECT, INSERT, UPDATE, DELETE
	Permissive bool
	Roles      []string
	Qual       string
	WithCheck  string
	Canonical  string
}

func (p *TablePolicy) ID() ast.Id          { return p.Id }
func (p *TablePolicy) TypeName() string    { return "policy" }
func (p *TablePolicy) CanonicalSQL() string { return p.Canonical }
func (p *TablePolicy) Revert() []string {
	return []string{"DROP POLICY " + ast.QuoteIdentifier(p.Id.Name) + " ON " + p.Id.SchemaId.String()}
}

// TableIndex is a `CREATE INDEX` object.
type TableIndex struct {
	Id        ast.RelationId
	Canonical string
}

func (i *TableIndex) ID() ast.Id          { return i.Id }
func (i *TableIndex) TypeName() string    { return "index" }
func (i *TableIndex) CanonicalSQL() string { return i.Canonical }
func (i *TableIndex) Revert() []string {
	return []string{"DROP INDEX " + i.Id.SchemaId.Schema + "." + ast.QuoteIdentifier(i.Id.Name)}
}

// TableConstraint is a top-level `ALTER TABLE ... ADD CONSTRAINT` object —
// distinct from the inline Constraint embedded in Table (spec.md §3).
type TableConstraint struct {
	Id   ast.RelationId
	Info *Constraint
}

func (c *TableConstraint) ID() ast.Id         { return c.Id }
func (c *TableConstraint) TypeName() string   { return "table constraint" }
func (c *TableConstraint) CanonicalSQL() string { return c.Info.Canonical }
func (c *TableConstraint) Revert() []string {
	return []string{"ALTER TABLE ONLY " + c.Id.SchemaId.String() + " DROP CONSTRAINT " + ast.QuoteIdentifier(c.Id.Name)}
}

// TableSequence is the owned sequence linked back to a column default via
// `ALTER TABLE ... ALTER COLUMN ... SET DEFAULT nextval(...)`.
type TableSequence struct {
	Id         ast.RelationId // Name is the column name the sequence backs
	Sequence   string         // qualified sequence name
	Canonical  string
}

func (s *TableSequence) ID() ast.Id          { return s.Id }
func (s *TableSequence) TypeName() string    { return "table sequence" }
func (s *TableSequence) CanonicalSQL() string { return s.Canonical }
func (s *TableSequence) Revert() []string {
	return []string{
		"ALTER TABLE " + s.Id.SchemaId.String() + " ALTER COLUMN " + ast.QuoteIdentifier(s.Id.Name) + " DROP DEFAULT",
	}
}

// TableRls tracks whether a table has `ENABLE ROW LEVEL SECURITY` set.
type TableRls struct {
	Id      ast.SchemaId
	Enabled bool
}

func (r *TableRls) ID() ast.Id          { return r.Id }
func (r *TableRls) TypeName() string    { return "row level security" }
func (r *TableRls) CanonicalSQL() string {
	if r.Enabled {
		return "ALTER TABLE " + r.Id.String() + " ENABLE ROW LEVEL SECURITY"
	}
	return "ALTER TABLE " + r.Id.String() + " DISABLE ROW LEVEL SECURITY"
}
func (r *TableRls) Revert() []string {
	return []string{"ALTER TABLE " + r.Id.String() + " DISABLE ROW LEVEL SECURITY"}
}

// TableOwner tracks `ALTER TABLE ... OWNER TO`.
type TableOwner struct {
	Id    ast.SchemaId
	Owner string
}

func (o *TableOwner) ID() ast.Id          { return o.Id }
func (o *TableOwner) TypeName() string    { return "table owner" }
func (o *TableOwner) CanonicalSQL() string {
	return "ALTER TABLE " + o.Id.String() + " OWNER TO " + ast.QuoteIdentifier(o.Owner)
}

// Revert cannot recover the pre-change owner from the AST alone, so it
// falls back to session_user (spec.md §9 open question).
func (o *TableOwner) Revert() []string {
	return []string{"ALTER TABLE " + o.Id.String() + " OWNER TO " + ast.SessionUser}
}
