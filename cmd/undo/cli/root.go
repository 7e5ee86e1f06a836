// Package cli provides the undo/redo service's command-line interface.
package cli

import (
	"context"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var Version = "dev"

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:     "undo",
		Short:   "Undo/redo service",
		Long:    "Serves the per-user undo/redo stacks (C4) and event inversion (C7).",
		Version: Version,
	}

	root.AddCommand(NewServe())

	return fang.Execute(ctx, root)
}
