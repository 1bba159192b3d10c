package ast

import "testing"

func TestCanonicalTypeName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"integer alias", "integer", "pg_catalog.int4"},
		{"int4 passthrough", "int4", "pg_catalog.int4"},
		{"bigint alias", "bigint", "pg_catalog.int8"},
		{"varchar with length", "varchar(255)", "pg_catalog.varchar(255)"},
		{"character varying with length", "character varying(100)", "pg_catalog.varchar(100)"},
		{"numeric with precision", "numeric(10,2)", "pg_catalog.numeric(10,2)"},
		{"timestamp with time zone", "timestamp with time zone", "pg_catalog.timestamptz"},
		{"unbounded array", "integer[]", "pg_catalog.int4[]"},
		{"bounded array", "integer[3]", "pg_catalog.int4[3]"},
		{"unknown user type passthrough", "geography", "geography"},
		{"already-qualified passthrough", "pg_catalog.int4", "pg_catalog.int4"},
		{"case insensitive", "INTEGER", "pg_catalog.int4"},
		{"surrounding whitespace", "  text  ", "pg_catalog.text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalTypeName(tt.raw); got != tt.expected {
				t.Errorf("CanonicalTypeName(%q) = %q; want %q", tt.raw, got, tt.expected)
			}
		})
	}
}
