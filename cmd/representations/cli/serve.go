package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weaveform/weave/cmd/representations/web"
	"github.com/weaveform/weave/internal/config"
)

// NewServe creates the serve command.
func NewServe() *cobra.Command {
	cfg := config.FromEnv()

	var (
		addr      string
		redisAddr string
		geomURL   string
		brokers   []string
		topic     string
		reprTopic string
		group     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the representation pipeline HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := web.New(web.Config{
				Addr:      addr,
				RedisAddr: redisAddr,
				GeomURL:   geomURL,
				Brokers:   brokers,
				Topic:     topic,
				ReprTopic: reprTopic,
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
	cmd.Flags().StringVar(&redisAddr, "redis", cfg.RedisURL, "Redis address")
	cmd.Flags().StringVar(&geomURL, "geom-url", cfg.GeomURL, "geometry kernel service URL")
	cmd.Flags().StringSliceVar(&brokers, "brokers", cfg.LogBrokers, "Kafka seed brokers")
	cmd.Flags().StringVar(&topic, "topic", cfg.ObjectTopic, "Kafka change topic")
	cmd.Flags().StringVar(&reprTopic, "repr-topic", cfg.ReprTopic, "Kafka representation topic")
	cmd.Flags().StringVar(&group, "group", "weave-representations", "Kafka consumer group")

	return cmd
}
