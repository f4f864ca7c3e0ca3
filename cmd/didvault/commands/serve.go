package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"didvault/internal/app"
	"didvault/internal/server"
)

func serveCmd() *cobra.Command {
	var listen, metricsListen, admin string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, metrics listener and relay dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("metrics-listen") {
				cfg.MetricsListen = metricsListen
			}
			if cmd.Flags().Changed("admin") {
				cfg.Admin = admin
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			w, err := app.NewWire(cfg, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting didvault",
				zap.String("listen", cfg.Listen),
				zap.String("pinning", cfg.Pinning.Mode),
				zap.String("relay", cfg.Relay.Mode),
				zap.String("cipher", string(w.Codec.Suite())),
			)
			return server.New(w).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "API listen address")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "metrics listen address (empty disables)")
	cmd.Flags().StringVar(&admin, "admin", "", "vault admin principal")
	return cmd
}
