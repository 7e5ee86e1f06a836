// Package cli provides the representation pipeline service's command-line interface.
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
		Use:     "representations",
		Short:   "Representation pipeline service",
		Long:    "Computes and publishes per-object representations from the change log (C8).",
		Version: Version,
	}

	root.AddCommand(NewServe())

	return fang.Execute(ctx, root)
}
