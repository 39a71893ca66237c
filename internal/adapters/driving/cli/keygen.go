package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l8testudy/drivevault/internal/vault"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new vault key",
	Long: `Generates a fresh 256-bit key and prints it base64-encoded, ready
for the vault.key config entry. Losing the key makes every stored blob
unreadable; keep it backed up.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := vault.GenerateKey()
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		cmd.Println(key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
