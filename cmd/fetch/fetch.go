// Package fetch implements `pgterra fetch`: pull the remote schema down
// into local files. Shares internal/fetch with cmd/init; the distinction
// is purely CLI framing (init scaffolds a brand new tree, fetch refreshes
// an existing one).
package fetch

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgterra/pgterra/internal/config"
	intfetch "github.com/pgterra/pgterra/internal/fetch"
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
	Use:   "fetch",
	Short: "Pull the remote schema down into local files",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&host, "host", "localhost", "database server host")
	Cmd.Flags().IntVar(&port, "port", 5432, "database server port")
	Cmd.Flags().StringVar(&dbname, "dbname", "", "database name (required)")
	Cmd.Flags().StringVar(&user, "user", "", "database user name (required)")
	Cmd.Flags().StringVar(&password, "password", "", "database password (optional, or PGPASSWORD)")
	Cmd.Flags().StringVar(&schema, "schema", "public", "schema to fetch")
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

	var l writer.Layout
	switch layout {
	case "normal":
		l = writer.LayoutNormal
	case "flat":
		l = writer.LayoutFlat
	case "nested":
		l = writer.LayoutNested
	default:
		return fmt.Errorf("unknown layout %q", layout)
	}

	if err := intfetch.WriteTo(cmd.Context(), afero.NewOsFs(), conn, []string{schema}, outDir, l); err != nil {
		return fmt.Errorf("fetching %s: %w", dbname, err)
	}
	fmt.Printf("Fetched schema %q from %s:%d/%s into %s\n", schema, host, port, dbname, outDir)
	return nil
}
