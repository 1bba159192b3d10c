package ast

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Kind enumerates the closed set of top-level statement kinds the Loader
// dispatches on (spec.md §4.2).
type Kind int

const (
	KindUnknown Kind = iota
	KindCompositeType
	KindEnumType
	KindSequence
	KindTable
	KindView
	KindMatView
	KindFunction
	KindTrigger
	KindIndex
	KindPolicy
	KindGrant
	KindAlterTableAddConstraint
	KindAlterTableEnableRLS
	KindAlterTableOwner
	KindAlterTableColumnSequence
	KindAlterTableOther
	KindSchema
	KindComment
	KindExtension
	KindIgnored
)

// Statement is a single top-level parsed node paired with its original SQL
// text and dispatch Kind. It is the unit the Loader consumes.
type Statement struct {
	Kind Kind
	Raw  *pg_query.Node
	SQL  string
}

// Parse splits sql (a concatenation of pg_dump output or local .sql files in
// filename order) into individual statements and parses each one. It
// returns one Statement per top-level node, tagged with the dispatch Kind
// the Loader needs. A parse failure anywhere is fatal for the whole call,
// per spec.md §4.7.
func Parse(sql string) ([]Statement, error) {
	raw, err := pg_query.SplitWithParser(sql, true)
	if err != nil {
		return nil, &ParseError{SQL: sql, Err: err}
	}

	var out []Statement
	for _, stmt := range raw {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		result, err := pg_query.Parse(stmt)
		if err != nil {
			return nil, &ParseError{SQL: stmt, Err: err}
		}
		for _, rawStmt := range result.Stmts {
			if rawStmt.Stmt == nil {
				continue
			}
			out = append(out, Statement{
				Kind: classify(rawStmt.Stmt),
				Raw:  rawStmt.Stmt,
				SQL:  stmt,
			})
		}
	}
	return out, nil
}

// ParseError wraps a parser failure together with the offending SQL text,
// surfaced verbatim per spec.md §7.
type ParseError struct {
	SQL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v (statement: %q)", e.Err, e.SQL)
}

func (e *ParseError) Unwrap() error { return e.Err }

func classify(n *pg_query.Node) Kind {
	switch node := n.Node.(type) {
	case *pg_query.Node_CompositeTypeStmt:
		return KindCompositeType
	case *pg_query.Node_CreateEnumStmt:
		return KindEnumType
	case *pg_query.Node_CreateSeqStmt:
		return KindSequence
	case *pg_query.Node_CreateStmt:
		return KindTable
	case *pg_query.Node_ViewStmt:
		return KindView
	case *pg_query.Node_CreateTableAsStmt:
		return KindMatView
	case *pg_query.Node_CreateFunctionStmt:
		return KindFunction
	case *pg_query.Node_CreateTrigStmt:
		return KindTrigger
	case *pg_query.Node_IndexStmt:
		return KindIndex
	case *pg_query.Node_CreatePolicyStmt:
		return KindPolicy
	case *pg_query.Node_GrantStmt:
		return KindGrant
	case *pg_query.Node_AlterTableStmt:
		return classifyAlterTable(node.AlterTableStmt)
	case *pg_query.Node_CreateSchemaStmt:
		return KindSchema
	case *pg_query.Node_CommentStmt:
		return KindComment
	case *pg_query.Node_CreateExtensionStmt:
		return KindExtension
	default:
		return KindIgnored
	}
}

func classifyAlterTable(stmt *pg_query.AlterTableStmt) Kind {
	// spec.md §4.2: a single ALTER TABLE wraps exactly one command for the
	// purposes the Loader cares about; the first recognized command wins.
	for _, cmdNode := range stmt.Cmds {
		cmd := cmdNode.GetAlterTableCmd()
		if cmd == nil {
			continue
		}
		switch cmd.Subtype {
		case pg_query.AlterTableType_AT_AddConstraint:
			return KindAlterTableAddConstraint
		case pg_query.AlterTableType_AT_EnableRowSecurity:
			return KindAlterTableEnableRLS
		case pg_query.AlterTableType_AT_ChangeOwner:
			return KindAlterTableOwner
		case pg_query.AlterTableType_AT_ColumnDefault:
			if def := cmd.Def; def != nil {
				if fn := def.GetFuncCall(); fn != nil && callsNextval(fn) {
					return KindAlterTableColumnSequence
				}
			}
		}
	}
	return KindAlterTableOther
}

func callsNextval(fn *pg_query.FuncCall) bool {
	for _, n := range fn.Funcname {
		if s := n.GetString_(); s != nil && strings.EqualFold(s.Sval, "nextval") {
			return true
		}
	}
	return false
}
