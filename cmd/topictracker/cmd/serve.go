package cmd

import (
	"errors"
	"log/slog"

	"github.com/nfrund/topictracker/internal/pubsub"
	"github.com/nfrund/topictracker/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	Long: `Starts the REST API under /api/topics, the websocket gateway at /ws and the
static browser client. The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		pubsub.Version = version
		tracingCfg := pubsub.NewTracingConfig(cfg)
		tracer, shutdownTracing, err := pubsub.SetupOTel(ctx, tracingCfg)
		if err != nil {
			return err
		}
		defer shutdownTracing()

		var bus *pubsub.WatermillBridge
		if tracingCfg.Enabled {
			bus = pubsub.NewWatermillBridgeWithTracer(tracer)
			slog.Info("Pub/Sub tracing enabled", "zipkin_url", tracingCfg.ZipkinURL)
		} else {
			bus = pubsub.NewWatermillBridge()
		}

		store, err := openStore(ctx, cfg)
		if err != nil {
			_ = bus.Close()
			return err
		}
		slog.Info("Database ready", "driver", cfg.DBDriver)

		s, err := server.New(server.Dependencies{
			Config: cfg,
			Store:  store,
			PubSub: bus,
		})
		if err != nil {
			return errors.Join(err, bus.Close(), store.Close(ctx))
		}
		return s.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
