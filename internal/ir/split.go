package ir

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SplitStatements breaks sql into individual top-level statement strings,
// for callers (sandbox.Normalize, which hands the result to
// dbclient.Apply) that need to execute each one separately rather than
// parse them into the Object Model.
func SplitStatements(sql string) ([]string, error) {
	raw, err := pg_query.SplitWithParser(sql, true)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, stmt := range raw {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
