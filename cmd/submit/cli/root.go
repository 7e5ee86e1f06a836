// Package cli provides the submit pipeline service's command-line interface.
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
		Use:     "submit",
		Short:   "Submit pipeline service",
		Long:    "Widens a user's change batch to its dependency closure and commits it (C6).",
		Version: Version,
	}

	root.AddCommand(NewServe())

	return fang.Execute(ctx, root)
}
