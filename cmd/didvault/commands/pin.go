package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"didvault/internal/app"
	"didvault/internal/crypto"
)

// pin <file>: encrypt a file and pin the ciphertext.
func pinCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "pin <file>",
		Short: "Encrypt a file and pin it through the configured gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if mode != "" {
				cfg.Pinning.Mode = mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			codec, err := codecFor("")
			if err != nil {
				return err
			}
			pins, err := app.NewPinningGateway(cfg.Pinning, logger)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			key := crypto.DeriveKey(passphrase)
			defer crypto.WipeKey(&key)
			blob, err := codec.Encrypt(key, data)
			if err != nil {
				return err
			}
			raw, err := crypto.DecodeBlob(blob)
			if err != nil {
				return err
			}
			addr, err := pins.Pin(cmd.Context(), filepath.Base(args[0]), raw)
			if err != nil {
				return err
			}
			logger.Debug("pinned", zap.String("address", addr.String()), zap.Int("size", len(raw)))
			fmt.Fprintf(cmd.OutOrStdout(), "address: %s\nsha256:  %s\n", addr, crypto.Checksum(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "pinning mode: ipfs or file (default from config)")
	return cmd
}
