package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pgterra/pgterra/internal/color"
)

// RenderPlan renders diffs as a Terraform-style plan: one "+ table.x" /
// "~ table.y" / "- table.z" line per object, a per-category summary, and a
// trailing totals line (spec.md §6 "pgterra plan").
func RenderPlan(diffs []Diff, c *color.Color) string {
	var b strings.Builder
	for _, d := range diffs {
		op := planOpName(d.Operation)
		b.WriteString(c.FormatPlanLine(d.Type.String(), d.Identity, op))
		b.WriteString("\n")
	}

	summary := Summarize(diffs)
	b.WriteString("\n")
	for _, typ := range categoryOrder {
		added, altered, dropped := summary.Added[typ], summary.Altered[typ], summary.Dropped[typ]
		if added == 0 && altered == 0 && dropped == 0 {
			continue
		}
		b.WriteString(c.FormatSummaryLine(typ.String(), added, altered, dropped))
		b.WriteString("\n")
	}

	totalAdded, totalAltered, totalDropped := summary.Totals()
	b.WriteString("\n")
	b.WriteString(c.FormatPlanHeader(totalAdded, totalAltered, totalDropped))
	return b.String()
}

func planOpName(op Operation) string {
	switch op {
	case OpCreate:
		return "add"
	case OpAlter, OpRecreate:
		return "change"
	case OpDrop:
		return "destroy"
	default:
		return ""
	}
}

var categoryOrder = []ObjectType{
	ObjectSchema,
	ObjectCompositeType, ObjectEnumType, ObjectSequence, ObjectTable,
	ObjectTableSequence, ObjectTableConstraint, ObjectTableIndex,
	ObjectTablePolicy, ObjectTableRLS, ObjectTableOwner, ObjectView,
	ObjectMatView, ObjectFunction, ObjectTrigger, ObjectPrivilege,
}

// RenderUnifiedDiff renders a plain (uncolored) textual unified diff
// between the canonical SQL of the old ("remote") and new ("local") schema
// dumps, a line-oriented view alongside the object-level plan (spec.md §6).
func RenderUnifiedDiff(oldSQL, newSQL string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldSQL),
		B:        difflib.SplitLines(newSQL),
		FromFile: "remote",
		ToFile:   "local",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// RenderSQL joins every Diff's statements in plan order into one SQL
// script suitable for `pgterra apply`, each statement terminated by a
// single semicolon and a newline.
func RenderSQL(diffs []Diff) string {
	var stmts []string
	for _, d := range diffs {
		stmts = append(stmts, d.Statements...)
	}
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(strings.TrimRight(s, ";"))
		b.WriteString(";\n")
	}
	return b.String()
}
