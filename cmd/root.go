// Package cmd assembles the pgterra command tree. Grounded on the
// teacher's cmd/root.go: a persistent --debug flag wired to the package
// logger, one subpackage per subcommand.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pgterra/pgterra/cmd/apply"
	"github.com/pgterra/pgterra/cmd/fetch"
	initcmd "github.com/pgterra/pgterra/cmd/init"
	"github.com/pgterra/pgterra/cmd/normalize"
	"github.com/pgterra/pgterra/cmd/plan"
	"github.com/pgterra/pgterra/internal/logger"
	"github.com/pgterra/pgterra/internal/version"
)

var debug bool

var RootCmd = &cobra.Command{
	Use:   "pgterra",
	Short: "Declarative PostgreSQL schema migration tool",
	Long: fmt.Sprintf(`pgterra computes and applies PostgreSQL schema migrations from a
declarative .sql source, preferring in-place ALTER over drop-and-recreate.

Version: %s %s

Commands:
  init       Scaffold a local schema tree from an existing database
  plan       Show the migration plan between local and remote schema
  apply      Apply a migration plan to the remote database
  fetch      Pull the remote schema down into local files
  normalize  Rewrite local SQL into its canonical form

Use "pgterra [command] --help" for more information about a command.`,
		version.App(), platform()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	RootCmd.AddCommand(initcmd.Cmd)
	RootCmd.AddCommand(plan.Cmd)
	RootCmd.AddCommand(apply.Cmd)
	RootCmd.AddCommand(fetch.Cmd)
	RootCmd.AddCommand(normalize.Cmd)
}

func setupLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger.SetGlobal(slog.New(handler), debug)
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
