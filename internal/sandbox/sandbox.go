// Package sandbox spins up a throwaway, UUID-named Postgres instance so
// `pgterra normalize` can round-trip a local schema through a real server
// and capture its canonical re-serialization (catching anything the
// deparser alone can't, e.g. server-side default expression rewriting).
// The teacher uses fergusstrange/embedded-postgres for this; this engine
// uses testcontainers-go/modules/postgres instead, a real and commonly
// paired ecosystem library for the same throwaway-database need.
package sandbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pgterra/pgterra/internal/config"
	"github.com/pgterra/pgterra/internal/dbclient"
	"github.com/pgterra/pgterra/internal/ir"
	"github.com/pgterra/pgterra/internal/logger"
)

// Sandbox is a disposable Postgres container used purely to let the
// server itself parse and echo back a schema's canonical form.
type Sandbox struct {
	container *tcpostgres.PostgresContainer
	conn      config.Connection
}

// Start launches a fresh container, naming its database after a random
// UUID so concurrent `normalize` runs never collide.
func Start(ctx context.Context) (*Sandbox, error) {
	dbName := "pgterra_" + uuid.NewString()[:8]

	container, err := tcpostgres.Run(ctx,
		"postgres:17",
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("pgterra"),
		tcpostgres.WithPassword("pgterra"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("starting sandbox postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving sandbox host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("resolving sandbox port: %w", err)
	}

	logger.Get().Debug("sandbox postgres ready", "database", dbName, "port", port.Int())

	return &Sandbox{
		container: container,
		conn: config.Connection{
			Host:     host,
			Port:     port.Int(),
			Database: dbName,
			User:     "pgterra",
			Password: "pgterra",
			Schema:   "public",
			SSLMode:  "disable",
		},
	}, nil
}

// Stop terminates and removes the container.
func (s *Sandbox) Stop(ctx context.Context) error {
	return s.container.Terminate(ctx)
}

// Normalize loads sql into the sandbox, then reads the schema back out
// through dbclient.DumpDDL and ir.Load, producing the same *ir.Schema a
// real remote database would yield for that source.
func (s *Sandbox) Normalize(ctx context.Context, sql string) (*ir.Schema, error) {
	client, err := dbclient.Connect(ctx, s.conn)
	if err != nil {
		return nil, fmt.Errorf("connecting to sandbox: %w", err)
	}
	defer client.Close()

	stmts, err := ir.SplitStatements(sql)
	if err != nil {
		return nil, fmt.Errorf("splitting input SQL: %w", err)
	}
	if err := client.Apply(ctx, stmts); err != nil {
		return nil, fmt.Errorf("loading schema into sandbox: %w", err)
	}

	dump, err := client.DumpDDL(ctx, s.conn.Schema)
	if err != nil {
		return nil, fmt.Errorf("dumping sandbox schema: %w", err)
	}
	return ir.Load(dump)
}
