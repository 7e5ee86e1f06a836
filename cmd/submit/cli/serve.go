package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaveform/weave/cmd/submit/web"
	"github.com/weaveform/weave/internal/config"
)

// NewServe creates the serve command.
func NewServe() *cobra.Command {
	cfg := config.FromEnv()

	var (
		addr            string
		changeLogURL    string
		objectsURL      string
		dependenciesURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the submit pipeline HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := web.New(web.Config{
				Addr:            addr,
				ChangeLogURL:    changeLogURL,
				ObjectsURL:      objectsURL,
				DependenciesURL: dependenciesURL,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.RunURL, "bind address")
	cmd.Flags().StringVar(&changeLogURL, "changelog-url", cfg.ChangeLogURL, "change log service URL")
	cmd.Flags().StringVar(&objectsURL, "objects-url", cfg.ObjectsURL, "object cache service URL")
	cmd.Flags().StringVar(&dependenciesURL, "dependencies-url", cfg.DependenciesURL, "dependency cache service URL")

	return cmd
}
