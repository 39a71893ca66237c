package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

var registration domain.FolderRegistration

var registerCmd = &cobra.Command{
	Use:   "register <remote-folder-id>",
	Short: "Link a remote folder for syncing",
	Long: `Verifies that the configured credentials can read the remote folder,
then records it for future sync sweeps. Registration does not sync; run
"drivevault sync" afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registration.OwnerID, "owner", "", "owning user ID (required)")
	registerCmd.Flags().StringVar(&registration.GroupID, "group", "", "owning group (school class) ID")
	registerCmd.Flags().StringVar(&registration.DefaultSubjectID, "subject", "", "default subject for every file in the folder")
	registerCmd.Flags().StringVar(&registration.Privacy, "privacy", "private", "visibility scope")
	_ = registerCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	if syncer == nil {
		return errors.New("sync service not configured")
	}

	reg := registration
	reg.RemoteID = args[0]

	folder, err := syncer.RegisterFolder(cmd.Context(), reg)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	cmd.Printf("Registered %q as %s\n", folder.Name, folder.ID)
	return nil
}
