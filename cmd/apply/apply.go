// Package apply implements `pgterra apply`: recompute the migration plan,
// confirm with the operator, then execute it inside one transaction.
// Grounded on the teacher's dump/plan connection-flag shape; the
// confirm-then-execute flow and optional git recording are this engine's
// own addition (spec.md §6 "external collaborators").
package apply

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgterra/pgterra/internal/config"
	"github.com/pgterra/pgterra/internal/dbclient"
	"github.com/pgterra/pgterra/internal/diff"
	"github.com/pgterra/pgterra/internal/gitutil"
	"github.com/pgterra/pgterra/internal/ir"
	"github.com/pgterra/pgterra/internal/loader"
	"github.com/pgterra/pgterra/internal/logger"
)

var (
	localDir string

	host     string
	port     int
	dbname   string
	user     string
	password string
	schema   string

	autoApprove bool
	recordGit   bool
)

var Cmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a migration plan to the remote database",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&localDir, "dir", ".", "local schema directory")

	Cmd.Flags().StringVar(&host, "host", "localhost", "database server host")
	Cmd.Flags().IntVar(&port, "port", 5432, "database server port")
	Cmd.Flags().StringVar(&dbname, "dbname", "", "database name (required)")
	Cmd.Flags().StringVar(&user, "user", "", "database user name (required)")
	Cmd.Flags().StringVar(&password, "password", "", "database password (optional, or PGPASSWORD)")
	Cmd.Flags().StringVar(&schema, "schema", "public", "remote schema to apply against")

	Cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "skip interactive confirmation")
	Cmd.Flags().BoolVar(&recordGit, "record-git", false, "commit the applied plan in the local directory's git repo")

	Cmd.MarkFlagRequired("dbname")
	Cmd.MarkFlagRequired("user")
}

func run(cmd *cobra.Command, args []string) error {
	local, err := loader.LoadDir(afero.NewOsFs(), localDir)
	if err != nil {
		return fmt.Errorf("loading local schema from %s: %w", localDir, err)
	}

	pw := password
	if pw == "" {
		pw = os.Getenv("PGPASSWORD")
	}
	conn := config.Connection{
		Host: host, Port: port, Database: dbname, User: user,
		Password: pw, Schema: schema, SSLMode: "prefer",
	}

	client, err := dbclient.Connect(cmd.Context(), conn)
	if err != nil {
		return err
	}
	defer client.Close()

	remoteSQL, err := client.DumpDDL(cmd.Context(), schema)
	if err != nil {
		return fmt.Errorf("fetching remote schema: %w", err)
	}
	remote, err := ir.Load(remoteSQL)
	if err != nil {
		return fmt.Errorf("parsing remote schema: %w", err)
	}

	diffs := diff.Plan(remote, local)
	if len(diffs) == 0 {
		fmt.Println("No changes. The remote schema already matches the local schema.")
		return nil
	}

	fmt.Print(diff.RenderSQL(diffs))
	if !autoApprove && !confirm() {
		fmt.Println("Apply cancelled.")
		return nil
	}

	var stmts []string
	for _, d := range diffs {
		stmts = append(stmts, d.Statements...)
	}

	logger.Get().Info("applying migration", "statements", len(stmts))
	if err := client.Apply(cmd.Context(), stmts); err != nil {
		return fmt.Errorf("applying migration: %w", err)
	}
	fmt.Println("Apply complete.")

	if recordGit {
		if err := recordApply(diffs); err != nil {
			logger.Get().Warn("git recording failed", "error", err)
		}
	}
	return nil
}

func confirm() bool {
	fmt.Print("\nDo you want to apply these changes?\n  Only 'yes' will be accepted to approve.\n\n  Enter a value: ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

// recordApply commits the applied plan's SQL as a single commit in the
// local directory's git repo, so a later `git revert` can roll it back
// (spec.md §1 "git integration for commit/rollback" as an external
// collaborator, never part of the core planner).
func recordApply(diffs []diff.Diff) error {
	repo := gitutil.Repo{Dir: localDir}
	if !repo.IsRepo() {
		return fmt.Errorf("%s is not a git repository", localDir)
	}
	summary := diff.Summarize(diffs)
	added, altered, dropped := summary.Totals()
	message := fmt.Sprintf("pgterra apply: %d added, %d altered, %d dropped", added, altered, dropped)
	if _, err := repo.Run("add", "-A"); err != nil {
		return err
	}
	_, err := repo.Run("commit", "-m", message)
	return err
}
