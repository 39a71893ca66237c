package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var openOutput string

var openCmd = &cobra.Command{
	Use:   "open <file-id>",
	Short: "Decrypt a synced file and write its plaintext",
	Long: `Reads a synced file's at-rest ciphertext, authenticates it against
the identity it was sealed with and writes the plaintext to stdout or
to the path given with --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().StringVarP(&openOutput, "output", "o", "", "write plaintext to this path instead of stdout")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	if syncer == nil {
		return errors.New("sync service not configured")
	}

	plaintext, err := syncer.OpenFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}

	if openOutput != "" {
		if err := os.WriteFile(openOutput, plaintext, 0o600); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		cmd.Printf("Wrote %d bytes to %s\n", len(plaintext), openOutput)
		return nil
	}

	if _, err := cmd.OutOrStdout().Write(plaintext); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
