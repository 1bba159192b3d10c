// Package normalize implements `pgterra normalize`: round-trip the local
// .sql tree through a throwaway Postgres instance and rewrite it in the
// server's canonical form (spec.md §5, GLOSSARY "Normalize").
package normalize

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgterra/pgterra/internal/loader"
	"github.com/pgterra/pgterra/internal/sandbox"
	"github.com/pgterra/pgterra/internal/writer"
)

var (
	localDir string
	layout   string
)

var Cmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite local SQL into its canonical form",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVar(&localDir, "dir", ".", "local schema directory")
	Cmd.Flags().StringVar(&layout, "layout", "normal", "output layout: normal, flat, nested")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fs := afero.NewOsFs()

	sql, err := loader.ReadDir(fs, localDir)
	if err != nil {
		return fmt.Errorf("reading local schema from %s: %w", localDir, err)
	}

	box, err := sandbox.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting sandbox: %w", err)
	}
	defer stop(ctx, box)

	schema, err := box.Normalize(ctx, sql)
	if err != nil {
		return fmt.Errorf("normalizing schema: %w", err)
	}

	l, err := parseLayout(layout)
	if err != nil {
		return err
	}
	if err := writer.Write(fs, localDir, schema, l); err != nil {
		return fmt.Errorf("writing normalized schema: %w", err)
	}

	fmt.Printf("Normalized schema written to %s\n", localDir)
	return nil
}

func stop(ctx context.Context, box *sandbox.Sandbox) {
	if err := box.Stop(ctx); err != nil {
		fmt.Printf("warning: failed to terminate sandbox: %v\n", err)
	}
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
