package diff

import (
	"fmt"

	"github.com/pgterra/pgterra/internal/ast"
	"github.com/pgterra/pgterra/internal/ir"
)

// PlanCreateSchemas emits `CREATE SCHEMA IF NOT EXISTS` for every schema
// that exists only in new — spec.md §4.6 step 1, run before any
// object-level category so tables/types/etc. always land in an existing
// schema.
func PlanCreateSchemas(old, new []string) []Diff {
	oldSet := stringSet(old)
	var diffs []Diff
	for _, name := range new {
		if _, existed := oldSet[name]; existed {
			continue
		}
		stmt := "CREATE SCHEMA IF NOT EXISTS " + ast.QuoteIdentifier(name)
		diffs = append(diffs, Diff{Type: ObjectSchema, Operation: OpCreate, Identity: name, Statements: []string{stmt}})
	}
	return diffs
}

// PlanDropSchemas emits `DROP SCHEMA` for every schema that exists only in
// old — spec.md §4.6 step 3, run after every object-level category so the
// schema is empty by the time it drops.
func PlanDropSchemas(old, new []string) []Diff {
	newSet := stringSet(new)
	var diffs []Diff
	for _, name := range old {
		if _, stillExists := newSet[name]; stillExists {
			continue
		}
		stmt := fmt.Sprintf("DROP SCHEMA %s", ast.QuoteIdentifier(name))
		diffs = append(diffs, Diff{Type: ObjectSchema, Operation: OpDrop, Identity: name, Statements: []string{stmt}})
	}
	return diffs
}

func stringSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// Plan runs the Schema Planner: every object category compared between old
// and new in the fixed order spec.md §4.6 mandates. The order exists so
// that dependency-bearing categories (e.g. a table's own columns) are
// settled before anything that might reference them (e.g. a constraint
// added back after a drop+create), and so that two runs over the same
// input always emit byte-identical output.
func Plan(old, new *ir.Schema) []Diff {
	var diffs []Diff

	diffs = append(diffs, PlanCreateSchemas(old.Schemas, new.Schemas)...)
	diffs = append(diffs, PlanCompositeTypes(old.CompositeTypes, new.CompositeTypes)...)
	diffs = append(diffs, PlanEnumTypes(old.EnumTypes, new.EnumTypes)...)
	diffs = append(diffs, PlanSequences(old.Sequences, new.Sequences)...)
	diffs = append(diffs, PlanTables(old.Tables, new.Tables)...)
	diffs = append(diffs, PlanTableSequences(old.TableSequences, new.TableSequences)...)
	diffs = append(diffs, PlanTableConstraints(old.TableConstraints, new.TableConstraints)...)
	diffs = append(diffs, PlanTableIndexes(old.TableIndexes, new.TableIndexes)...)
	diffs = append(diffs, PlanTablePolicies(old.TablePolicies, new.TablePolicies)...)
	diffs = append(diffs, PlanTableRls(old.TableRls, new.TableRls)...)
	diffs = append(diffs, PlanTableOwners(old.TableOwners, new.TableOwners)...)
	diffs = append(diffs, PlanViews(old.Views, new.Views)...)
	diffs = append(diffs, PlanMatViews(old.MatViews, new.MatViews)...)
	diffs = append(diffs, PlanFunctions(old.Functions, new.Functions)...)
	diffs = append(diffs, PlanTableTriggers(old.TableTriggers, new.TableTriggers)...)
	diffs = append(diffs, PlanPrivileges(old.Privileges, new.Privileges)...)
	diffs = append(diffs, PlanDropSchemas(old.Schemas, new.Schemas)...)

	return diffs
}

// Summary tallies add/alter/drop counts per ObjectType for the plan header
// and per-category summary lines (spec.md §6 "plan output").
type Summary struct {
	Added, Altered, Dropped map[ObjectType]int
}

func Summarize(diffs []Diff) Summary {
	s := Summary{Added: map[ObjectType]int{}, Altered: map[ObjectType]int{}, Dropped: map[ObjectType]int{}}
	for _, d := range diffs {
		switch d.Operation {
		case OpCreate:
			s.Added[d.Type]++
		case OpAlter, OpRecreate:
			s.Altered[d.Type]++
		case OpDrop:
			s.Dropped[d.Type]++
		}
	}
	return s
}

// Totals sums every category's add/alter/drop counts.
func (s Summary) Totals() (added, altered, dropped int) {
	for _, v := range s.Added {
		added += v
	}
	for _, v := range s.Altered {
		altered += v
	}
	for _, v := range s.Dropped {
		dropped += v
	}
	return
}
