package ast

import "github.com/lib/pq"

// QuoteIdentifier quotes a Postgres identifier for safe inclusion in
// generated DDL. Grounded on the teacher's own internal/util/quote.go,
// which wraps the same helper from lib/pq purely for its quoting rules —
// lib/pq is never used as a driver here, only for this.
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QuoteLiteral quotes a SQL string literal, e.g. an enum label or a
// default-value expression that must be re-emitted verbatim.
func QuoteLiteral(s string) string {
	return pq.QuoteLiteral(s)
}

// SessionUser is the role reference PostgreSQL resolves to "whoever is
// running this session" — used as the best-effort revert target for
// `ALTER ... OWNER TO`, since the pre-change owner isn't recoverable from
// the AST alone (spec.md §9 open question).
const SessionUser = "session_user"
