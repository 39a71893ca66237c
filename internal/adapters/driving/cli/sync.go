package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/l8testudy/drivevault/internal/core/domain"
	"github.com/l8testudy/drivevault/internal/core/services"
)

var (
	warmFirst     bool
	watchMode     bool
	watchInterval time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync [folder-id]",
	Short: "Sync linked folders into the vault",
	Long: `Pulls files from linked remote folders, encrypts them at rest and
extracts their text. With a folder ID only that folder is synced,
otherwise every enabled folder is swept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&warmFirst, "warm", false, "pre-fetch small files before syncing")
	syncCmd.Flags().BoolVar(&watchMode, "watch", false, "keep running and sweep all folders on an interval")
	syncCmd.Flags().DurationVar(&watchInterval, "interval", 0, "sweep interval in watch mode (default from config)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncer == nil {
		return errors.New("sync service not configured")
	}
	ctx := cmd.Context()

	if len(args) > 0 {
		folderID := args[0]
		if warmFirst {
			if err := syncer.WarmCache(ctx, folderID); err != nil {
				return fmt.Errorf("warm cache: %w", err)
			}
		}

		cmd.Printf("Syncing folder %s...\n", folderID)
		report, err := syncer.SyncFolder(ctx, folderID)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		printFolderReport(cmd, report)
		return nil
	}

	if watchMode {
		interval := watchInterval
		if interval <= 0 {
			interval = syncInterval
		}
		if interval <= 0 {
			return errors.New("watch mode needs a positive interval")
		}
		cmd.Printf("Watching all folders, sweeping every %s...\n", interval)
		sched := services.NewScheduler(syncer, interval)
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	cmd.Println("Syncing all folders...")
	report, err := syncer.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	printBatchReport(cmd, report)
	return nil
}

func printFolderReport(cmd *cobra.Command, r *domain.FolderReport) {
	cmd.Printf("%d new, %d updated, %d skipped\n", r.NewFiles, r.UpdatedFiles, r.SkippedFiles)
	for _, fe := range r.Errors {
		cmd.Printf("  failed: %s: %s\n", fe.Filename, fe.Err)
	}
}

func printBatchReport(cmd *cobra.Command, r *domain.BatchReport) {
	cmd.Printf("%d/%d folders synced, %d new, %d updated, %d skipped\n",
		r.SyncedFolders, r.TotalFolders, r.NewFiles, r.UpdatedFiles, r.SkippedFiles)
	for _, fe := range r.FolderErrors {
		cmd.Printf("  folder failed: %s: %s\n", fe.FolderName, fe.Err)
	}
	for _, fe := range r.FileErrors {
		cmd.Printf("  file failed: %s: %s\n", fe.Filename, fe.Err)
	}
}
