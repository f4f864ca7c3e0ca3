package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"didvault/internal/crypto"
	"didvault/internal/domain"
)

var errPassphraseRequired = errors.New("passphrase required (-p)")

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func writeOutput(cmd *cobra.Command, out string, data []byte) error {
	if out == "" || out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o600)
}

func codecFor(suite string) (*crypto.Codec, error) {
	if suite == "" {
		suite = cfg.Cipher
	}
	s, err := crypto.ParseSuite(suite)
	if err != nil {
		return nil, err
	}
	return crypto.NewCodec(s), nil
}

// encrypt [file]: seal a file into a base64 blob.
func encryptCmd() *cobra.Command {
	var out, suite string
	cmd := &cobra.Command{
		Use:   "encrypt [file]",
		Short: "Encrypt a file (or stdin) into a base64 blob",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			codec, err := codecFor(suite)
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
			return writeOutput(cmd, out, []byte(blob+"\n"))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&suite, "cipher", "", "aes-256-gcm or chacha20-poly1305 (default from config)")
	return cmd
}

// decrypt [file]: open a base64 blob.
func decryptCmd() *cobra.Command {
	var out, suite string
	cmd := &cobra.Command{
		Use:   "decrypt [file]",
		Short: "Decrypt a base64 blob from a file (or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			codec, err := codecFor(suite)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			key := crypto.DeriveKey(passphrase)
			defer crypto.WipeKey(&key)
			plain, err := codec.Decrypt(key, domain.Blob(bytes.TrimSpace(data)))
			if errors.Is(err, domain.ErrAuthenticationFailed) {
				return fmt.Errorf("%w: wrong passphrase or tampered blob", err)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, plain)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&suite, "cipher", "", "aes-256-gcm or chacha20-poly1305 (default from config)")
	return cmd
}
