package ir

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/pgterra/pgterra/internal/ast"
	"github.com/pgterra/pgterra/internal/logger"
)

// ModelError is a statement that parsed but could not be mapped to a
// variant (spec.md §7). Benign cases (unsupported ALTER TABLE actions,
// top-level statement kinds the loader doesn't model) are logged and
// dropped by the caller; structural impossibilities are returned as
// errors.
type ModelError struct {
	Statement string
	Reason    string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model error: %s: %s", e.Reason, e.Statement)
}

// DuplicateError reports two CREATEs that resolved to the same identity
// within one category — a fatal load-time invariant violation (spec.md §3
// "Invariants").
type DuplicateError struct {
	Id ast.Id
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate object: %s", e.Id)
}

// Load parses sql and assembles a Schema snapshot, dispatching each
// top-level statement to its variant constructor (spec.md §4.2). Parse
// failure is fatal for the whole snapshot.
func Load(sql string) (*Schema, error) {
	stmts, err := ast.Parse(sql)
	if err != nil {
		return nil, err
	}

	s := NewSchema()
	for _, stmt := range stmts {
		if err := dispatch(s, stmt); err != nil {
			return nil, err
		}
	}
	s.computeSchemas()
	return s, nil
}

func dispatch(s *Schema, stmt ast.Statement) error {
	switch stmt.Kind {
	case ast.KindCompositeType:
		return loadCompositeType(s, stmt)
	case ast.KindEnumType:
		return loadEnumType(s, stmt)
	case ast.KindSequence:
		return loadSequence(s, stmt)
	case ast.KindTable:
		return loadTable(s, stmt)
	case ast.KindView:
		return loadView(s, stmt)
	case ast.KindMatView:
		return loadMatView(s, stmt)
	case ast.KindFunction:
		return loadFunction(s, stmt)
	case ast.KindTrigger:
		return loadTrigger(s, stmt)
	case ast.KindIndex:
		return loadIndex(s, stmt)
	case ast.KindPolicy:
		return loadPolicy(s, stmt)
	case ast.KindGrant:
		return loadGrant(s, stmt)
	case ast.KindAlterTableAddConstraint:
		return loadTableConstraint(s, stmt)
	case ast.KindAlterTableEnableRLS:
		return loadTableRls(s, stmt)
	case ast.KindAlterTableOwner:
		return loadTableOwner(s, stmt)
	case ast.KindAlterTableColumnSequence:
		return loadTableSequence(s, stmt)
	case ast.KindAlterTableOther, ast.KindSchema, ast.KindComment, ast.KindExtension, ast.KindIgnored:
		logger.Get().Warn("ignoring unsupported top-level statement", "kind", int(stmt.Kind), "sql", truncate(stmt.SQL))
		return nil
	default:
		return nil
	}
}

func truncate(s string) string {
	const max = 120
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func canonical(n *pg_query.Node) (string, error) {
	return ast.CanonicalSQL(n)
}

func qualifiedName(nameParts []*pg_query.Node, defaultSchema string) (schema, name string) {
	schema = defaultSchema
	for i, part := range nameParts {
		str := part.GetString_()
		if str == nil {
			continue
		}
		if i == 0 && len(nameParts) > 1 {
			schema = str.Sval
		} else {
			name = str.Sval
		}
	}
	return
}

func rangeVarName(rv *pg_query.RangeVar, defaultSchema string) (schema, name string) {
	schema = defaultSchema
	if rv.Schemaname != "" {
		schema = rv.Schemaname
	}
	name = rv.Relname
	return
}

func typeNameString(tn *pg_query.TypeName) string {
	if tn == nil {
		return ""
	}
	var parts []string
	for _, n := range tn.Names {
		if s := n.GetString_(); s != nil {
			parts = append(parts, s.Sval)
		}
	}
	raw := strings.Join(parts, ".")
	if tn.ArrayBounds != nil {
		raw += "[]"
	}
	return ast.CanonicalTypeName(raw)
}

func defaultSchema() string { return "public" }

func loadCompositeType(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCompositeTypeStmt()
	schema, name := rangeVarName(n.Typevar, defaultSchema())
	id := ast.NewSchemaId(schema, name)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreate(s.CompositeTypes, id.Schema)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &CompositeType{Id: id, Canonical: c}
	return nil
}

func loadEnumType(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreateEnumStmt()
	schema, name := qualifiedName(n.TypeName, defaultSchema())
	id := ast.NewSchemaId(schema, name)
	var items []string
	for _, v := range n.Vals {
		if str := v.GetString_(); str != nil {
			items = append(items, str.Sval)
		}
	}
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreate(s.EnumTypes, id.Schema)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &EnumType{Id: id, Items: items, Canonical: c}
	return nil
}

func loadSequence(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreateSeqStmt()
	schema, name := rangeVarName(n.Sequence, defaultSchema())
	id := ast.NewSchemaId(schema, name)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreate(s.Sequences, id.Schema)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &Sequence{Id: id, Canonical: c}
	return nil
}

func loadTable(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreateStmt()
	if n.Relation == nil {
		return &ModelError{Statement: stmt.SQL, Reason: "CREATE TABLE with no relation"}
	}
	schema, name := rangeVarName(n.Relation, defaultSchema())
	id := ast.NewSchemaId(schema, name)
	table := NewTable(id)

	position := 0
	for _, elt := range n.TableElts {
		if cd := elt.GetColumnDef(); cd != nil {
			position++
			col, inline := buildColumn(id, cd, position)
			table.Columns.Set(col.Id.Name, col)
			for _, c := range inline {
				table.Constraints.Set(c.Name, c)
			}
		}
		if cons := elt.GetConstraint(); cons != nil {
			c := buildTableLevelConstraint(id, cons)
			table.Constraints.Set(c.Name, c)
		}
	}

	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	table.Canonical = c

	bucket := mapGetOrCreate(s.Tables, id.Schema)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = table
	return nil
}

func buildColumn(tableId ast.SchemaId, cd *pg_query.ColumnDef, position int) (*Column, []*Constraint) {
	colId := ast.NewRelationId(tableId.Schema, tableId.Name, cd.Colname)
	dataType := typeNameString(cd.TypeName)

	col := &Column{
		Id:       colId,
		DataType: dataType,
		Nullable: true,
	}

	var inline []*Constraint
	for _, cn := range cd.Constraints {
		cons := cn.GetConstraint()
		if cons == nil {
			continue
		}
		switch cons.Contype {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			col.Nullable = false
		case pg_query.ConstrType_CONSTR_NULL:
			col.Nullable = true
		case pg_query.ConstrType_CONSTR_DEFAULT:
			expr := deparseNode(cons.RawExpr)
			name := cd.Colname + "_default"
			col.Default = &Constraint{
				Id:        ast.NewRelationId(tableId.Schema, tableId.Name, name),
				Name:      name,
				Kind:      ConstraintDefault,
				Canonical: "DEFAULT " + expr,
			}
		case pg_query.ConstrType_CONSTR_IDENTITY:
			gen := "BY DEFAULT"
			if cons.GeneratedWhen == "a" {
				gen = "ALWAYS"
			}
			col.Identity = &Identity{Generation: gen}
			col.Nullable = false
		case pg_query.ConstrType_CONSTR_PRIMARY:
			col.Nullable = false
			name := cd.Colname + "_pkey"
			inline = append(inline, &Constraint{
				Id:        ast.NewRelationId(tableId.Schema, tableId.Name, name),
				Name:      name,
				Kind:      ConstraintPrimary,
				Canonical: fmt.Sprintf("PRIMARY KEY (%s)", ast.QuoteIdentifier(cd.Colname)),
			})
		case pg_query.ConstrType_CONSTR_UNIQUE:
			name := cd.Colname + "_key"
			inline = append(inline, &Constraint{
				Id:        ast.NewRelationId(tableId.Schema, tableId.Name, name),
				Name:      name,
				Kind:      ConstraintUnique,
				Canonical: fmt.Sprintf("UNIQUE (%s)", ast.QuoteIdentifier(cd.Colname)),
			})
		case pg_query.ConstrType_CONSTR_CHECK:
			expr := deparseNode(cons.RawExpr)
			name := cons.Conname
			if name == "" {
				name = cd.Colname + "_check"
			}
			inline = append(inline, &Constraint{
				Id:        ast.NewRelationId(tableId.Schema, tableId.Name, name),
				Name:      name,
				Kind:      ConstraintCheck,
				Canonical: fmt.Sprintf("CHECK (%s)", expr),
			})
		case pg_query.ConstrType_CONSTR_FOREIGN:
			if cons.Pktable != nil {
				refSchema, refTable := rangeVarName(cons.Pktable, tableId.Schema)
				name := cd.Colname + "_fkey"
				inline = append(inline, &Constraint{
					Id:   ast.NewRelationId(tableId.Schema, tableId.Name, name),
					Name: name,
					Kind: ConstraintForeign,
					Canonical: fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s.%s",
						ast.QuoteIdentifier(cd.Colname), refSchema, refTable),
				})
			}
		}
	}

	// CanonicalSQL for the column: name, type, nullability and default, in a
	// stable textual form used by the Node Differ to decide whether the
	// column changed at all.
	var b strings.Builder
	b.WriteString(ast.QuoteIdentifier(cd.Colname) + " " + dataType)
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		b.WriteString(" " + col.Default.Canonical)
	}
	col.Canonical = b.String()

	return col, inline
}

func buildTableLevelConstraint(tableId ast.SchemaId, cons *pg_query.Constraint) *Constraint {
	name := cons.Conname
	var kind ConstraintKind
	var rendered string

	switch cons.Contype {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		kind = ConstraintPrimary
		rendered = "PRIMARY KEY (" + colList(cons.Keys) + ")"
	case pg_query.ConstrType_CONSTR_UNIQUE:
		kind = ConstraintUnique
		rendered = "UNIQUE (" + colList(cons.Keys) + ")"
	case pg_query.ConstrType_CONSTR_CHECK:
		kind = ConstraintCheck
		rendered = "CHECK (" + deparseNode(cons.RawExpr) + ")"
	case pg_query.ConstrType_CONSTR_FOREIGN:
		kind = ConstraintForeign
		refSchema, refTable := "", ""
		if cons.Pktable != nil {
			refSchema, refTable = rangeVarName(cons.Pktable, "public")
		}
		rendered = "FOREIGN KEY (" + colList(cons.FkAttrs) + ") REFERENCES " + refSchema + "." + refTable
	case pg_query.ConstrType_CONSTR_EXCLUSION:
		kind = ConstraintExclusion
		rendered = "EXCLUDE"
	default:
		kind = ConstraintUnknown
		rendered = ""
	}
	if name == "" {
		name = fmt.Sprintf("unnamed_%s", strings.ToLower(kind.String()))
	}
	return &Constraint{
		Id:        ast.NewRelationId(tableId.Schema, tableId.Name, name),
		Name:      name,
		Kind:      kind,
		Canonical: rendered,
	}
}

func colList(nodes []*pg_query.Node) string {
	var names []string
	for _, n := range nodes {
		if s := n.GetString_(); s != nil {
			names = append(names, ast.QuoteIdentifier(s.Sval))
		}
	}
	return strings.Join(names, ", ")
}

func deparseNode(n *pg_query.Node) string {
	if n == nil {
		return ""
	}
	if s, err := ast.Deparse(n); err == nil {
		return s
	}
	return ""
}

func loadView(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetViewStmt()
	schema, name := rangeVarName(n.View, defaultSchema())
	id := ast.NewSchemaId(schema, name)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreate(s.Views, id.Schema)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &View{Id: id, Canonical: c}
	return nil
}

func loadMatView(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreateTableAsStmt()
	if n.Into == nil || n.Into.Rel == nil {
		return &ModelError{Statement: stmt.SQL, Reason: "CREATE TABLE AS with no target relation"}
	}
	schema, name := rangeVarName(n.Into.Rel, defaultSchema())
	id := ast.NewSchemaId(schema, name)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreate(s.MatViews, id.Schema)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &MatView{Id: id, Canonical: c}
	return nil
}

func loadFunction(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreateFunctionStmt()
	schema, name := qualifiedName(n.Funcname, defaultSchema())
	id := ast.NewSchemaId(schema, name)

	var args []Arg
	var returnType string
	for _, p := range n.Parameters {
		fp := p.GetFunctionParameter()
		if fp == nil {
			continue
		}
		if fp.Mode == pg_query.FunctionParameterMode_FUNC_PARAM_OUT ||
			fp.Mode == pg_query.FunctionParameterMode_FUNC_PARAM_TABLE {
			continue
		}
		args = append(args, Arg{Name: fp.Name, Type: typeNameString(fp.ArgType)})
	}
	if n.ReturnType != nil {
		returnType = typeNameString(n.ReturnType)
	}

	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}

	fn := &Function{Id: id, Args: args, ReturnType: returnType, Canonical: c}
	bucket := mapGetOrCreate(s.Functions, id.Schema)
	sig := fn.Signature()
	if _, dup := bucket[sig]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[sig] = fn
	return nil
}

func loadTrigger(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreateTrigStmt()
	schema, table := rangeVarName(n.Relation, defaultSchema())
	id := ast.NewRelationId(schema, table, n.Trigname)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreateRel(s.TableTriggers, id.SchemaId)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &Trigger{Id: id, Canonical: c}
	return nil
}

func loadIndex(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetIndexStmt()
	schema, table := rangeVarName(n.Relation, defaultSchema())
	id := ast.NewRelationId(schema, table, n.Idxname)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	bucket := mapGetOrCreateRel(s.TableIndexes, id.SchemaId)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &TableIndex{Id: id, Canonical: c}
	return nil
}

func loadPolicy(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetCreatePolicyStmt()
	schema, table := rangeVarName(n.Table, defaultSchema())
	id := ast.NewRelationId(schema, table, n.PolicyName)
	c, err := canonical(stmt.Raw)
	if err != nil {
		return err
	}
	var roles []string
	for _, r := range n.Roles {
		if s := r.GetRoleSpec(); s != nil {
			roles = append(roles, s.Rolename)
		}
	}
	bucket := mapGetOrCreateRel(s.TablePolicies, id.SchemaId)
	if _, dup := bucket[id.Name]; dup {
		return &DuplicateError{Id: id}
	}
	bucket[id.Name] = &TablePolicy{
		Id:         id,
		Command:    n.CmdName,
		Permissive: n.Permissive,
		Roles:      roles,
		Qual:       deparseNode(n.Qual),
		WithCheck:  deparseNode(n.WithCheck),
		Canonical:  c,
	}
	return nil
}

func loadGrant(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetGrantStmt()
	for _, obj := range n.Objects {
		rv := obj.GetRangeVar()
		if rv == nil {
			logger.Get().Warn("ignoring grant target this loader doesn't model (ALL TABLES IN SCHEMA / ON SCHEMA)", "sql", truncate(stmt.SQL))
			continue
		}
		schema, table := rangeVarName(rv, defaultSchema())
		qualified := schema + "." + table

		for _, granteeNode := range n.Grantees {
			grantee := granteeNode.GetRoleSpec()
			if grantee == nil {
				continue
			}
			pid := PrivilegeId{Object: qualified, Grantee: grantee.Rolename}

			existing, ok := s.Privileges[pid.String()]
			if !ok {
				existing = &Privilege{
					Id:         pid,
					TargetType: TargetObject,
					ObjType:    ObjectTable,
					Grantee:    grantee.Rolename,
					IsGrant:    n.IsGrant,
					Privileges: map[string]*PrivilegeEntry{},
				}
				s.Privileges[pid.String()] = existing
			}
			for _, priv := range n.Privileges {
				ap := priv.GetAccessPriv()
				if ap == nil {
					continue
				}
				name := strings.ToLower(ap.PrivName)
				entry, ok := existing.Privileges[name]
				if !ok {
					entry = &PrivilegeEntry{Name: name, Cols: map[string]struct{}{}}
					existing.Privileges[name] = entry
				}
				for _, col := range ap.Cols {
					if str := col.GetString_(); str != nil {
						entry.Cols[str.Sval] = struct{}{}
					}
				}
			}
		}
	}
	return nil
}

func loadTableConstraint(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetAlterTableStmt()
	schema, table := rangeVarName(n.Relation, defaultSchema())
	for _, cmdNode := range n.Cmds {
		cmd := cmdNode.GetAlterTableCmd()
		if cmd == nil || cmd.Subtype != pg_query.AlterTableType_AT_AddConstraint {
			continue
		}
		cons := cmd.Def.GetConstraint()
		if cons == nil {
			continue
		}
		tableId := ast.NewSchemaId(schema, table)
		info := buildTableLevelConstraint(tableId, cons)
		id := info.Id
		bucket := mapGetOrCreateRel(s.TableConstraints, id.SchemaId)
		if _, dup := bucket[id.Name]; dup {
			return &DuplicateError{Id: id}
		}
		bucket[id.Name] = &TableConstraint{Id: id, Info: info}
	}
	return nil
}

func loadTableRls(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetAlterTableStmt()
	schema, table := rangeVarName(n.Relation, defaultSchema())
	id := ast.NewSchemaId(schema, table)
	s.TableRls[id] = &TableRls{Id: id, Enabled: true}
	return nil
}

func loadTableOwner(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetAlterTableStmt()
	schema, table := rangeVarName(n.Relation, defaultSchema())
	id := ast.NewSchemaId(schema, table)
	owner := ""
	for _, cmdNode := range n.Cmds {
		cmd := cmdNode.GetAlterTableCmd()
		if cmd == nil || cmd.Subtype != pg_query.AlterTableType_AT_ChangeOwner {
			continue
		}
		if cmd.Newowner != nil {
			owner = cmd.Newowner.Rolename
		}
	}
	s.TableOwners[id] = &TableOwner{Id: id, Owner: owner}
	return nil
}

func loadTableSequence(s *Schema, stmt ast.Statement) error {
	n := stmt.Raw.GetAlterTableStmt()
	schema, table := rangeVarName(n.Relation, defaultSchema())
	for _, cmdNode := range n.Cmds {
		cmd := cmdNode.GetAlterTableCmd()
		if cmd == nil || cmd.Subtype != pg_query.AlterTableType_AT_ColumnDefault {
			continue
		}
		colName := cmd.Name
		id := ast.NewRelationId(schema, table, colName)
		expr := deparseNode(cmd.Def)
		bucket := mapGetOrCreateRel(s.TableSequences, id.SchemaId)
		bucket[id.Name] = &TableSequence{
			Id:        id,
			Sequence:  expr,
			Canonical: "ALTER TABLE " + id.SchemaId.String() + " ALTER COLUMN " + ast.QuoteIdentifier(colName) + " SET DEFAULT " + expr,
		}
	}
	return nil
}

func mapGetOrCreate[T any](m map[string]map[string]T, key string) map[string]T {
	if b, ok := m[key]; ok {
		return b
	}
	b := map[string]T{}
	m[key] = b
	return b
}

func mapGetOrCreateRel[T any](m map[ast.SchemaId]map[string]T, key ast.SchemaId) map[string]T {
	if b, ok := m[key]; ok {
		return b
	}
	b := map[string]T{}
	m[key] = b
	return b
}
