package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaveform/weave/cmd/objects/web"
	"github.com/weaveform/weave/internal/config"
)

// NewServe creates the serve command.
func NewServe() *cobra.Command {
	cfg := config.FromEnv()

	var (
		addr    string
		store   string
		brokers []string
		topic   string
		group   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the object cache HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := web.New(web.Config{
				Addr:      addr,
				StorePath: store,
				Brokers:   brokers,
				Topic:     topic,
				GroupID:   group,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer srv.Close()

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.RunURL, "bind address")
	cmd.Flags().StringVar(&store, "store", "objects.db", "DuckDB store path")
	cmd.Flags().StringSliceVar(&brokers, "brokers", cfg.LogBrokers, "Kafka seed brokers")
	cmd.Flags().StringVar(&topic, "topic", cfg.ObjectTopic, "Kafka topic")
	cmd.Flags().StringVar(&group, "group", "weave-objects", "Kafka consumer group")

	return cmd
}
