package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l8testudy/drivevault/internal/core/domain"
)

var (
	scopeUserID  string
	scopeGroupID string
	suggestLimit int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <name>",
	Short: "Rank subject candidates for an informal name",
	Long: `Scores the informal folder or file name against the subject catalog
and prints the best candidates. Use "confirm" to pin one of them.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <name> <subject-id>",
	Short: "Pin an informal name to a subject",
	Long: `Records a confirmed mapping from an informal name to a subject.
Confirmed mappings always win over the mapper's own guesses.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfirm,
}

func init() {
	for _, cmd := range []*cobra.Command{suggestCmd, confirmCmd} {
		cmd.Flags().StringVar(&scopeUserID, "user", "", "user scope for the mapping")
		cmd.Flags().StringVar(&scopeGroupID, "group", "", "group (school class) scope for the mapping")
	}
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 5, "maximum number of suggestions")
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(confirmCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if mapper == nil {
		return errors.New("mapper service not configured")
	}

	scope := domain.MappingScope{UserID: scopeUserID, GroupID: scopeGroupID}
	suggestions, err := mapper.SuggestMany(cmd.Context(), args[0], scope, suggestLimit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if len(suggestions) == 0 {
		cmd.Printf("No candidates for %q\n", args[0])
		return nil
	}
	for _, s := range suggestions {
		cmd.Printf("%5.2f  %s  (%s)\n", s.Score, s.Subject.Name, s.Subject.ID)
	}
	return nil
}

func runConfirm(cmd *cobra.Command, args []string) error {
	if mapper == nil {
		return errors.New("mapper service not configured")
	}

	scope := domain.MappingScope{UserID: scopeUserID, GroupID: scopeGroupID}
	if err := mapper.Confirm(cmd.Context(), args[0], args[1], scope); err != nil {
		return fmt.Errorf("confirm failed: %w", err)
	}

	cmd.Printf("Mapped %q to subject %s\n", args[0], args[1])
	return nil
}
