package ast

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// FormatOptions is the fixed format contract spec.md §4.1 requires:
// canonical SQL must be stable across platforms, so these options are a
// package-level constant, never user-configurable at the core layer
// (spec.md §6, §9 "Global state").
type FormatOptions struct {
	IndentWidth             int
	UppercaseKeywords        bool
	BlankLinesBetweenQueries int
}

// DefaultFormat is the one format used for every canonical comparison.
// Matches the defaults documented in spec.md §6.
var DefaultFormat = FormatOptions{
	IndentWidth:              4,
	UppercaseKeywords:         true,
	BlankLinesBetweenQueries: 2,
}

// Deparse renders a single parsed node back to SQL text via pg_query_go's
// round-trip deparser.
func Deparse(n *pg_query.Node) (string, error) {
	result := &pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{Stmt: n}},
	}
	out, err := pg_query.Deparse(result)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CanonicalSQL deparses n and passes it through Format with the fixed
// DefaultFormat options. This is the equality witness used throughout the
// engine: two objects compare equal iff their CanonicalSQL strings match.
func CanonicalSQL(n *pg_query.Node) (string, error) {
	raw, err := Deparse(n)
	if err != nil {
		return "", err
	}
	return Format(raw, DefaultFormat), nil
}

// Format applies a light formatting pass to already-deparsed SQL: when
// opts.UppercaseKeywords is set, the reserved keywords below are
// uppercased, and surrounding whitespace is trimmed. It is not a
// re-pretty-printer: opts.IndentWidth is not applied and no line breaks
// or indentation are added (blank lines between statements are applied
// only by JoinStatements). The deparser already produces syntactically
// valid, single-line-biased SQL, so keyword case is the only part of the
// canonical form Format normalizes.
func Format(sql string, opts FormatOptions) string {
	if opts.UppercaseKeywords {
		sql = uppercaseKeywords(sql)
	}
	return strings.TrimSpace(sql)
}

// reservedKeywords is the subset of PostgreSQL reserved words this engine's
// canonical form cares about uppercasing. It is intentionally small: the
// deparser already emits correct SQL, so this only affects display/compare
// stability, not correctness.
var reservedKeywords = []string{
	"create", "table", "alter", "drop", "column", "constraint", "primary",
	"key", "foreign", "references", "unique", "check", "not", "null",
	"default", "view", "materialized", "function", "returns", "language",
	"as", "trigger", "before", "after", "on", "for", "each", "row",
	"execute", "procedure", "index", "using", "policy", "grant", "to",
	"revoke", "from", "select", "insert", "update", "delete", "type",
	"enum", "sequence", "owned", "by", "schema", "if", "exists", "cascade",
	"restrict", "with", "values", "add", "rename", "set", "owner",
}

func uppercaseKeywords(sql string) string {
	// Token-boundary replace: only replace whole-word matches so identifiers
	// that merely contain a keyword substring are left untouched.
	var b strings.Builder
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		lower := strings.ToLower(w)
		replaced := false
		for _, kw := range reservedKeywords {
			if lower == kw {
				b.WriteString(strings.ToUpper(w))
				replaced = true
				break
			}
		}
		if !replaced {
			b.WriteString(w)
		}
		word.Reset()
	}
	inString := false
	for _, r := range sql {
		if r == '\'' {
			inString = !inString
			flush()
			b.WriteRune(r)
			continue
		}
		if inString {
			b.WriteRune(r)
			continue
		}
		if isWordRune(r) {
			word.WriteRune(r)
		} else {
			flush()
			b.WriteRune(r)
		}
	}
	flush()
	return b.String()
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// JoinStatements joins a list of already-formatted canonical statements with
// opts.BlankLinesBetweenQueries blank lines between them. It appends no
// semicolons; statements are joined exactly as given.
func JoinStatements(stmts []string, opts FormatOptions) string {
	sep := strings.Repeat("\n", opts.BlankLinesBetweenQueries+1)
	return strings.Join(stmts, sep)
}
