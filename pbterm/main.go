package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhystmorgan/pbterm/internal/audit"
	"rhystmorgan/pbterm/internal/config"
	"rhystmorgan/pbterm/internal/logging"
	"rhystmorgan/pbterm/internal/storage"
)

var (
	dataDir string
	store   string
	verbose bool

	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error
)

var rootCmd = &cobra.Command{
	Use:   "pbterm",
	Short: "A terminal phonebook",
	Long: `pbterm keeps a phonebook of names and numbers.

Run without arguments to open the interactive phonebook.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("data-dir") {
			cfg.SetDataDir(dataDir)
		}
		if cmd.Flags().Changed("store") {
			cfg.Store = store
		}
		if verbose {
			cfg.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, closeLog, err = logging.New(logging.Options{File: cfg.LogFile, Debug: cfg.Debug})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			_ = closeLog()
		}
	},
	RunE: runTUI,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every contact as tab-separated id, name and number",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var editCmd = &cobra.Command{
	Use:   "edit [contact-id]",
	Short: "Edit a contact's name or number",
	Long: `Runs the same checks as the edit dialog. When a check fails the
problem is printed and you are asked whether to discard the change; answer
"n" to enter corrected values.

Example:
  pbterm edit 5f0c... --name "Anna Karenina" --number "+7 495 123 4567"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "phonebook directory (default ~/.pbterm)")
	rootCmd.PersistentFlags().StringVar(&store, "store", config.StoreJSON, "storage backend: json or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	editCmd.Flags().String("name", "", "new name")
	editCmd.Flags().String("number", "", "new number")

	rootCmd.AddCommand(listCmd, editCmd)
}

// openPhonebook opens the configured store and, when enabled, the audit
// trail. The returned func releases both.
func openPhonebook() (storage.Repository, *audit.ContactAuditor, func(), error) {
	repo, err := storage.Open(storage.Options{
		Backend:    cfg.Store,
		DataDir:    cfg.DataDir,
		Passphrase: cfg.Passphrase,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Info("store opened", zap.String("backend", cfg.Store), zap.String("data_dir", cfg.DataDir))

	var auditor *audit.ContactAuditor
	if cfg.Audit {
		auditor, err = audit.NewContactAuditor(cfg.AuditDir())
		if err != nil {
			_ = repo.Close()
			return nil, nil, nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	release := func() {
		if auditor != nil {
			if err := auditor.Close(); err != nil {
				logger.Warn("failed to close audit log", zap.Error(err))
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}
	return repo, auditor, release, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
