// Package cli provides the dependency cache service's command-line interface.
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
		Use:     "dependencies",
		Short:   "Dependency cache service",
		Long:    "Serves the subscriber graph and transitive-dependency traversal (C3).",
		Version: Version,
	}

	root.AddCommand(NewServe())

	return fang.Execute(ctx, root)
}
