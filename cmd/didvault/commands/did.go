package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"didvault/internal/did"
)

func didCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "did",
		Short: "Generate and inspect DIDs",
	}

	var method string
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a fresh DID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if method == "" {
				method = cfg.DIDMethod
			}
			id, err := did.New(method).Generate()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	newCmd.Flags().StringVar(&method, "method", "", "DID method (default from config)")

	parseCmd := &cobra.Command{
		Use:   "parse <did>",
		Short: "Validate a DID and show its parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := did.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "method: %s\nid:     %s\n", d.Method, hex.EncodeToString(d.ID))
			return nil
		},
	}

	cmd.AddCommand(newCmd, parseCmd)
	return cmd
}
