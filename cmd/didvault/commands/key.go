package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"didvault/internal/crypto"
)

func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect passphrase-derived keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of the key derived from the passphrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			key := crypto.DeriveKey(passphrase)
			defer crypto.WipeKey(&key)
			fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", crypto.Fingerprint(key))
			return nil
		},
	})
	return cmd
}
