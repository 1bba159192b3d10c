// Package writer renders a *ir.Schema snapshot back out to .sql files —
// the inverse of package loader — used by `pgterra fetch` and `pgterra
// normalize` to materialize a canonical local tree. Grounded on the
// teacher's internal/diff multi-file writer, adapted from "one file per
// DDL statement, grouped by object type" to this engine's category
// layout.
package writer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/pgterra/pgterra/internal/ir"
)

// Layout selects how a Schema is spread across files, per the three
// on-disk layouts the saver supports (spec.md §6 "file layout table").
type Layout int

const (
	// LayoutNormal writes one numbered file per category under each
	// schema's directory: "public/04_tables.sql", "public/05_views.sql",
	// so on-disk order matches execution order. This is the default layout.
	// Every layout writes only the seven top-level categories in
	// categoryPrefix; relation-owned objects and privileges are not written.
	LayoutNormal Layout = iota
	// LayoutFlat writes the whole schema as a single all.sql file.
	LayoutFlat
	// LayoutNested writes one file per object under a category
	// subdirectory per schema: "public/tables/users.sql".
	LayoutNested
)

// categoryPrefix fixes the numeric ordering NORMAL layout files sort by,
// matching the Schema Planner's own category order (spec.md §4.6).
var categoryPrefix = map[string]string{
	"composite_types": "01_types",
	"enum_types":       "02_enums",
	"sequences":        "03_sequences",
	"tables":           "04_tables",
	"views":            "05_views",
	"materialized_views": "06_materialized_views",
	"functions":        "07_functions",
}

// Write renders schema to fs under dir according to layout.
func Write(fs afero.Fs, dir string, schema *ir.Schema, layout Layout) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	switch layout {
	case LayoutNormal:
		return writeNormal(fs, dir, schema)
	case LayoutFlat:
		return writeFlat(fs, dir, schema)
	case LayoutNested:
		return writeNested(fs, dir, schema)
	default:
		return fmt.Errorf("unknown layout %d", layout)
	}
}

func writeFlat(fs afero.Fs, dir string, schema *ir.Schema) error {
	var b strings.Builder
	for _, stmt := range allCanonicalSQL(schema) {
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	return afero.WriteFile(fs, filepath.Join(dir, "all.sql"), []byte(b.String()), 0o644)
}

func writeNormal(fs afero.Fs, dir string, schema *ir.Schema) error {
	bySchemaCategory := map[string]map[string]*strings.Builder{}
	for _, obj := range allObjects(schema) {
		prefix, ok := categoryPrefix[obj.category]
		if !ok {
			prefix = obj.category
		}
		cats, ok := bySchemaCategory[obj.schema]
		if !ok {
			cats = map[string]*strings.Builder{}
			bySchemaCategory[obj.schema] = cats
		}
		b, ok := cats[prefix]
		if !ok {
			b = &strings.Builder{}
			cats[prefix] = b
		}
		b.WriteString(obj.sql)
		b.WriteString(";\n\n")
	}

	for schemaName, cats := range bySchemaCategory {
		for prefix, b := range cats {
			path := filepath.Join(dir, schemaName, prefix+".sql")
			if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating dir for %s: %w", path, err)
			}
			if err := afero.WriteFile(fs, path, []byte(b.String()), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
	}
	return nil
}

func writeNested(fs afero.Fs, dir string, schema *ir.Schema) error {
	for _, obj := range allObjects(schema) {
		name := sanitize(obj.id)
		path := filepath.Join(dir, obj.schema, obj.category, name+".sql")
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating dir for %s: %w", path, err)
		}
		content := obj.sql + ";\n"
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func sanitize(name string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(name)
}

type writtenObject struct {
	schema   string
	category string
	id       string
	sql      string
}

// allObjects flattens every category of schema into a deterministic,
// sorted sequence of (schema, category, id, canonical SQL) tuples.
func allObjects(schema *ir.Schema) []writtenObject {
	var out []writtenObject

	for _, schemaName := range ir.SortedKeys(schema.CompositeTypes) {
		for _, name := range sortedMapKeys(schema.CompositeTypes[schemaName]) {
			t := schema.CompositeTypes[schemaName][name]
			out = append(out, writtenObject{schemaName, "composite_types", name, t.CanonicalSQL()})
		}
	}
	for _, schemaName := range ir.SortedKeys(schema.EnumTypes) {
		for _, name := range sortedMapKeys(schema.EnumTypes[schemaName]) {
			t := schema.EnumTypes[schemaName][name]
			out = append(out, writtenObject{schemaName, "enum_types", name, t.CanonicalSQL()})
		}
	}
	for _, schemaName := range ir.SortedKeys(schema.Sequences) {
		for _, name := range sortedMapKeys(schema.Sequences[schemaName]) {
			s := schema.Sequences[schemaName][name]
			out = append(out, writtenObject{schemaName, "sequences", name, s.CanonicalSQL()})
		}
	}
	for _, schemaName := range ir.SortedKeys(schema.Tables) {
		for _, name := range sortedMapKeys(schema.Tables[schemaName]) {
			t := schema.Tables[schemaName][name]
			out = append(out, writtenObject{schemaName, "tables", name, t.CanonicalSQL()})
		}
	}
	for _, schemaName := range ir.SortedKeys(schema.Views) {
		for _, name := range sortedMapKeys(schema.Views[schemaName]) {
			v := schema.Views[schemaName][name]
			out = append(out, writtenObject{schemaName, "views", name, v.CanonicalSQL()})
		}
	}
	for _, schemaName := range ir.SortedKeys(schema.MatViews) {
		for _, name := range sortedMapKeys(schema.MatViews[schemaName]) {
			v := schema.MatViews[schemaName][name]
			out = append(out, writtenObject{schemaName, "materialized_views", name, v.CanonicalSQL()})
		}
	}
	for _, schemaName := range ir.SortedKeys(schema.Functions) {
		for _, sig := range sortedMapKeys(schema.Functions[schemaName]) {
			fn := schema.Functions[schemaName][sig]
			out = append(out, writtenObject{schemaName, "functions", sig, fn.CanonicalSQL()})
		}
	}
	return out
}

func sortedMapKeys[T any](m map[string]T) []string {
	return ir.SortedKeys(m)
}

// allCanonicalSQL returns just the SQL text of allObjects, for the
// single-file layout.
func allCanonicalSQL(schema *ir.Schema) []string {
	objs := allObjects(schema)
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.sql
	}
	return out
}
