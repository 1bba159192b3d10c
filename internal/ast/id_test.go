package ast

import "testing"

func TestNewSchemaId(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		object   string
		expected string
	}{
		{"explicit schema", "app", "users", "app.users"},
		{"empty schema defaults to public", "", "users", "public.users"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := NewSchemaId(tt.schema, tt.object)
			if got := id.String(); got != tt.expected {
				t.Errorf("NewSchemaId(%q, %q).String() = %q; want %q", tt.schema, tt.object, got, tt.expected)
			}
		})
	}
}

func TestNewRelationId(t *testing.T) {
	id := NewRelationId("app", "users", "idx_users_email")
	if got, want := id.String(), "app.users.idx_users_email"; got != want {
		t.Errorf("NewRelationId(...).String() = %q; want %q", got, want)
	}
	if got, want := id.SchemaId.String(), "app.users"; got != want {
		t.Errorf("id.SchemaId.String() = %q; want %q", got, want)
	}
}

func TestIdImplementsStringer(t *testing.T) {
	var ids []Id = []Id{
		NewSchemaId("public", "t"),
		NewRelationId("public", "t", "idx"),
	}
	for _, id := range ids {
		if id.String() == "" {
			t.Errorf("%T: empty String()", id)
		}
	}
}
