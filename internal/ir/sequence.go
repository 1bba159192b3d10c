package ir

import "github.com/pgterra/pgterra/internal/ast"

// Sequence is a standalone `CREATE SEQUENCE` object (not one implicitly
// owned by a column default — that case is TableSequence).
type Sequence struct {
	Id        ast.SchemaId
	Canonical string
}

func (s *Sequence) ID() ast.Id         { return s.Id }
func (s *Sequence) TypeName() string   { return "sequence" }
func (s *Sequence) CanonicalSQL() string { return s.Canonical }

func (s *Sequence) Revert() []string {
	return []string{"DROP SEQUENCE " + s.Id.String()}
}
