// Package plan implements `pgterra plan`: load local and remote schemas
// and print the ordered migration plan between them. Grounded on the
// teacher's cmd/plan.go dual-source flag shape (database connection or a
// schema file for each side), narrowed here to local-file vs. remote-db
// since that is this engine's one supported direction (spec.md §6).
package plan

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgterra/pgterra/internal/color"
	"github.com/pgterra/pgterra/internal/config"
	"github.com/pgterra/pgterra/internal/dbclient"
	"github.com/pgterra/pgterra/internal/diff"
	"github.com/pgterra/pgterra/internal/ir"
	"github.com/pgterra/pgterra/internal/loader"
)

var (
	localDir string

	host     string
	port     int
	dbname   string
	user     string
	password string
	schema   string

	format  string
	noColor bool
)

var Cmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the migration plan between local and remote schema",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&localDir, "dir", ".", "local schema directory")

	Cmd.Flags().StringVar(&host, "host", "localhost", "database server host")
	Cmd.Flags().IntVar(&port, "port", 5432, "database server port")
	Cmd.Flags().StringVar(&dbname, "dbname", "", "database name (required)")
	Cmd.Flags().StringVar(&user, "user", "", "database user name (required)")
	Cmd.Flags().StringVar(&password, "password", "", "database password (optional, or PGPASSWORD)")
	Cmd.Flags().StringVar(&schema, "schema", "public", "remote schema to compare against")

	Cmd.Flags().StringVar(&format, "format", "text", "output format: text, sql")
	Cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	Cmd.MarkFlagRequired("dbname")
	Cmd.MarkFlagRequired("user")
}

func run(cmd *cobra.Command, args []string) error {
	diffs, err := computePlan(cmd)
	if err != nil {
		return err
	}

	switch format {
	case "sql":
		fmt.Print(diff.RenderSQL(diffs))
	case "text":
		fallthrough
	default:
		c := color.New(!noColor)
		fmt.Print(diff.RenderPlan(diffs, c))
	}
	return nil
}

// computePlan loads the local directory and the remote schema and runs
// the Schema Planner, returning the ordered diff list apply.Cmd re-derives
// before executing.
func computePlan(cmd *cobra.Command) ([]diff.Diff, error) {
	local, err := loader.LoadDir(afero.NewOsFs(), localDir)
	if err != nil {
		return nil, fmt.Errorf("loading local schema from %s: %w", localDir, err)
	}

	pw := password
	if pw == "" {
		pw = os.Getenv("PGPASSWORD")
	}
	conn := config.Connection{
		Host: host, Port: port, Database: dbname, User: user,
		Password: pw, Schema: schema, SSLMode: "prefer",
	}

	remote, err := fetchRemote(cmd, conn)
	if err != nil {
		return nil, fmt.Errorf("loading remote schema from %s: %w", dbname, err)
	}

	return diff.Plan(remote, local), nil
}

func fetchRemote(cmd *cobra.Command, conn config.Connection) (*ir.Schema, error) {
	client, err := dbclient.Connect(cmd.Context(), conn)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	sql, err := client.DumpDDL(cmd.Context(), conn.Schema)
	if err != nil {
		return nil, err
	}
	return ir.Load(sql)
}
