package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaveform/weave/cmd/undo/web"
	"github.com/weaveform/weave/internal/config"
)

// NewServe creates the serve command.
func NewServe() *cobra.Command {
	cfg := config.FromEnv()

	var (
		addr       string
		redisAddr  string
		objectsURL string
		brokers    []string
		topic      string
		group      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the undo/redo HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := web.New(web.Config{
				Addr:       addr,
				RedisAddr:  redisAddr,
				ObjectsURL: objectsURL,
				Brokers:    brokers,
				Topic:      topic,
				GroupID:    group,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer srv.Close()

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.RunURL, "bind address")
	cmd.Flags().StringVar(&redisAddr, "redis", cfg.RedisURL, "Redis address")
	cmd.Flags().StringVar(&objectsURL, "objects-url", cfg.ObjectsURL, "object cache service URL")
	cmd.Flags().StringSliceVar(&brokers, "brokers", cfg.LogBrokers, "Kafka seed brokers")
	cmd.Flags().StringVar(&topic, "topic", cfg.ObjectTopic, "Kafka topic")
	cmd.Flags().StringVar(&group, "group", "weave-undo", "Kafka consumer group")

	return cmd
}
