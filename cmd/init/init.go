// Package initcmd implements `pgterra init`, scaffolding a local schema
// tree from an existing database. Grounded on the teacher's cmd/dump.go
// connection-flag shape, adapted to write through internal/writer instead
// of printing to stdout.
package initcmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgterra/pgterra/internal/config"
	"github.com/pgterra/pgterra/internal/fetch"
	"github.com/pgterra/pgterra/internal/writer"
)

var (
	host     string
	port     int
	dbname   string
	user     string
	password string
	schema   string
	outDir   string
	layout   string
)

var Cmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a local schema tree from an existing database",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&host, "host", "localhost", "database server host")
	Cmd.Flags().IntVar(&port, "port", 5432, "database server port")
	Cmd.Flags().StringVar(&dbname, "dbname", "", "database name (required)")
	Cmd.Flags().StringVar(&user, "user", "", "database user name (required)")
	Cmd.Flags().StringVar(&password, "password", "", "database password (optional, or PGPASSWORD)")
	Cmd.Flags().StringVar(&schema, "schema", "public", "schema to scaffold from")
	Cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the schema tree into")
	Cmd.Flags().StringVar(&layout, "layout", "normal", "output layout: normal, flat, nested")
	Cmd.MarkFlagRequired("dbname")
	Cmd.MarkFlagRequired("user")
}

func run(cmd *cobra.Command, args []string) error {
	pw := password
	if pw == "" {
		pw = os.Getenv("PGPASSWORD")
	}

	conn := config.Connection{
		Host: host, Port: port, Database: dbname, User: user,
		Password: pw, Schema: schema, SSLMode: "prefer",
	}

	l, err := parseLayout(layout)
	if err != nil {
		return err
	}

	if err := fetch.WriteTo(cmd.Context(), afero.NewOsFs(), conn, []string{schema}, outDir, l); err != nil {
		return fmt.Errorf("scaffolding from %s: %w", dbname, err)
	}
	fmt.Printf("Scaffolded schema %q from %s:%d/%s into %s\n", schema, host, port, dbname, outDir)
	return nil
}

func parseLayout(s string) (writer.Layout, error) {
	switch s {
	case "normal":
		return writer.LayoutNormal, nil
	case "flat":
		return writer.LayoutFlat, nil
	case "nested":
		return writer.LayoutNested, nil
	default:
		return 0, fmt.Errorf("unknown layout %q", s)
	}
}
