package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"didvault/internal/app"
)

var (
	configPath string
	passphrase string
	logLevel   string
	logFormat  string

	cfg    app.Config
	logger *zap.Logger
)

// Execute runs the didvault CLI.
func Execute() error {
	return newRoot().Execute()
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "didvault",
		Short:        "Encrypted document vault with decentralized identities",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				c.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				c.LogFormat = logFormat
			}
			cfg = c

			l, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase the document key is derived from")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "json", "json or console")

	root.AddCommand(serveCmd(), encryptCmd(), decryptCmd(), keyCmd(), didCmd(), pinCmd())
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return errPassphraseRequired
	}
	return nil
}
