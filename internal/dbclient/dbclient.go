// Package dbclient connects to a live Postgres database and executes the
// Migration Planner's output against it, and runs the catalog queries the
// Remote Introspector (`pgterra fetch`) needs to reconstruct a Schema.
// Grounded on inventario's pgxpool.ParseConfig+sane-defaults pattern,
// adapted from a long-lived connection-pool-per-registry to a short-lived
// pool-per-CLI-invocation.
package dbclient

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgterra/pgterra/internal/config"
	"github.com/pgterra/pgterra/internal/logger"
)

// Client wraps a connection pool to one target database.
type Client struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against conn, applying the same conservative
// defaults the rest of the pack uses for short-lived CLI connections.
func Connect(ctx context.Context, conn config.Connection) (*Client, error) {
	poolConfig, err := pgxpool.ParseConfig(conn.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 5
	}
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = 10 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s:%d/%s: %w", conn.Host, conn.Port, conn.Database, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", conn.Host, conn.Port, conn.Database, err)
	}
	return &Client{pool: pool}, nil
}

// Close releases the pool.
func (c *Client) Close() { c.pool.Close() }

// Apply runs every statement in stmts sequentially inside one transaction,
// rolling back on the first failure (spec.md §6 "pgterra apply").
func (c *Client) Apply(ctx context.Context, stmts []string) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range stmts {
		logger.Get().Debug("executing statement", "index", i, "sql", stmt)
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w\nSQL: %s", i, err, stmt)
		}
	}
	return tx.Commit(ctx)
}

// DumpDDL reconstructs CREATE-statement source for schemaName from
// information_schema.columns joined with pg_tables, one statement per
// table, so the result can be fed straight into ir.Load (spec.md §4.2
// "remote dump" source).
//
// Each statement is a bare `CREATE TABLE schema.table (col udt_name, ...)`:
// only tables and their column names and types are covered. Views,
// sequences, functions, indexes, constraints, nullability, defaults and
// grants are not dumped, and the order of tables and of columns within a
// table is not fixed by the query.
func (c *Client) DumpDDL(ctx context.Context, schemaName string) (string, error) {
	rows, err := c.pool.Query(ctx, ddlQuery, schemaName)
	if err != nil {
		return "", fmt.Errorf("querying object definitions: %w", err)
	}
	defer rows.Close()

	var out string
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return "", fmt.Errorf("scanning object definition: %w", err)
		}
		out += def + ";\n\n"
	}
	return out, rows.Err()
}

const ddlQuery = `
SELECT 'CREATE TABLE ' || quote_ident(schemaname) || '.' || quote_ident(tablename) || ' (' ||
       string_agg(quote_ident(column_name) || ' ' || udt_name, ', ') || ')'
FROM information_schema.columns c
JOIN pg_tables t ON t.tablename = c.table_name AND t.schemaname = c.table_schema
WHERE c.table_schema = $1
GROUP BY schemaname, tablename
`
