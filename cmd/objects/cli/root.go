// Package cli provides the object cache service's command-line interface.
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
		Use:     "objects",
		Short:   "Object cache service",
		Long:    "Serves point-in-time object state and the alive set (C2).",
		Version: Version,
	}

	root.AddCommand(NewServe())

	return fang.Execute(ctx, root)
}
