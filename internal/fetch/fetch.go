// Package fetch introspects a live database and writes the result as a
// local schema tree, the shared machinery behind both `pgterra init` and
// `pgterra fetch`. Grounded on the teacher's ir/inspector.go, which fetches
// independent catalog groups concurrently via golang.org/x/sync/errgroup.
package fetch

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/pgterra/pgterra/internal/config"
	"github.com/pgterra/pgterra/internal/dbclient"
	"github.com/pgterra/pgterra/internal/ir"
	"github.com/pgterra/pgterra/internal/logger"
	"github.com/pgterra/pgterra/internal/writer"
)

// schemaNames are introspected concurrently; each is an independent
// pg_catalog scope so there is no ordering dependency between them.
type dump struct {
	name string
	sql  string
}

// Schema connects to conn, fetches every configured schema's DDL
// concurrently, and returns the merged *ir.Schema.
func Schema(ctx context.Context, conn config.Connection, schemaNames []string) (*ir.Schema, error) {
	client, err := dbclient.Connect(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	dumps := make([]dump, len(schemaNames))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range schemaNames {
		i, name := i, name
		g.Go(func() error {
			logger.Get().Debug("fetching schema", "schema", name)
			sql, err := client.DumpDDL(gctx, name)
			if err != nil {
				return fmt.Errorf("fetching schema %s: %w", name, err)
			}
			dumps[i] = dump{name: name, sql: sql}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined string
	for _, d := range dumps {
		combined += d.sql
	}
	return ir.Load(combined)
}

// WriteTo fetches conn's schemas and writes them to dir using layout,
// the operation shared by `pgterra init` and `pgterra fetch`.
func WriteTo(ctx context.Context, fs afero.Fs, conn config.Connection, schemaNames []string, dir string, layout writer.Layout) error {
	schema, err := Schema(ctx, conn, schemaNames)
	if err != nil {
		return err
	}
	return writer.Write(fs, dir, schema, layout)
}
