// Package cli is the cobra command tree driving the sync engine.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/l8testudy/drivevault/internal/adapters/driven/blob/fs"
	"github.com/l8testudy/drivevault/internal/adapters/driven/config/file"
	"github.com/l8testudy/drivevault/internal/adapters/driven/storage/sqlite"
	"github.com/l8testudy/drivevault/internal/connectors/drive"
	"github.com/l8testudy/drivevault/internal/core/ports/driving"
	"github.com/l8testudy/drivevault/internal/core/services"
	"github.com/l8testudy/drivevault/internal/extract"
	"github.com/l8testudy/drivevault/internal/logger"
	"github.com/l8testudy/drivevault/internal/vault"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by initServices and swapped by tests.
var (
	syncer driving.Syncer
	mapper driving.Mapper
	store  *sqlite.Store

	// syncInterval is the configured watch-mode sweep interval.
	syncInterval time.Duration
)

var (
	configPath string
	dataDir    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "drivevault",
	Short: "Sync remote folders into an encrypted local vault",
	Long: `drivevault pulls files from linked remote folders, stores them
encrypted at rest, extracts their text for search, and assigns each file
a subject from the school's catalog.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if !needsServices(cmd) {
			return nil
		}
		return initServices(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close store: %v", err)
			}
			store = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.drivevault/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "path to the record database directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// needsServices reports whether a command requires the full engine
// wiring. Key generation and version info must work without a config.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "keygen", "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return true
}

// initServices builds the engine from configuration. Everything is
// constructed eagerly so a bad config fails before any remote call.
func initServices(cmd *cobra.Command) error {
	if syncer != nil {
		return nil
	}

	cfg, err := file.Load(configPath)
	if err != nil {
		return err
	}

	cipher, err := vault.NewCipherFromBase64(cfg.Vault.Key)
	if err != nil {
		return fmt.Errorf("loading vault key: %w", err)
	}

	s, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	store = s

	blobs, err := fs.NewBlobStore(cfg.Vault.StorageRoot)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	credentials, err := os.ReadFile(cfg.Drive.CredentialsFile)
	if err != nil {
		return fmt.Errorf("reading drive credentials: %w", err)
	}

	source, err := drive.NewSource(cmd.Context(), credentials, drive.Options{
		MaxRetries: cfg.Sync.MaxRetries,
		BaseDelay:  cfg.Sync.RetryBaseDelay.Std(),
	})
	if err != nil {
		return err
	}

	syncInterval = cfg.Sync.Interval.Std()
	mapper = services.NewSubjectMapper(s.MappingStore(), s.SubjectStore())
	syncer = services.NewSyncOrchestrator(
		s.FolderStore(),
		s.FileStore(),
		blobs,
		source,
		extract.NewService(),
		mapper,
		cipher,
		cfg.Sync.MaxPrefetchSize,
	)
	return nil
}
