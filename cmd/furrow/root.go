package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/platform"
	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

var (
	verbose     bool
	jsonOutput  bool
	configPath  string
	adapterName string
	dataPath    string

	// cfg is resolved once per invocation in PersistentPreRunE.
	cfg platform.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "furrow",
	Short: "A small CRM for clients, deals, tasks and notes",
	Long: `furrow keeps a sales pipeline in a handful of plain collections.
Data lives in a .furrow directory by default; SQLite, Redis and in-memory
storage are available through --adapter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		loaded, err := platform.LoadConfig(configPath, wd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("adapter") {
			loaded.Adapter = adapterName
		}
		if cmd.Flags().Changed("data") {
			loaded.Data = dataPath
		}
		cfg = loaded

		level := slog.LevelInfo
		if verbose || cfg.Verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printer.Error(os.Stderr, err, hints(err)...)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: furrow.yaml at the workspace root)")
	rootCmd.PersistentFlags().StringVar(&adapterName, "adapter", platform.AdapterFS, "Storage adapter: fs, memory, redis, sqlite")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", platform.DataDir, "Data directory (fs) or database file (sqlite)")
}

// withWorkspace opens the configured workspace, runs fn and closes the
// storage. Validation failures are reported as warnings and do not fail the
// command.
func withWorkspace(cmd *cobra.Command, fn func(ctx context.Context, ws *crm.Workspace) error) error {
	ctx := cmd.Context()
	opts := append(cfg.Options(), platform.WithLogger(slog.Default()))

	ws, err := platform.Open(ctx, cfg.URI(), opts...)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	defer func() {
		if err := platform.Close(ws.Storage()); err != nil {
			slog.Warn("failed to close storage", "error", err)
		}
	}()

	return warnValidation(cmd, fn(ctx, ws))
}

func warnValidation(cmd *cobra.Command, err error) error {
	if errors.Is(err, core.ErrValidation) {
		printer.Warning(cmd.ErrOrStderr(), "%v\n", err)
		return nil
	}
	return err
}

func hints(err error) []string {
	switch {
	case errors.Is(err, core.ErrReadOnly):
		return []string{"Set read_only: false in furrow.yaml or unset FURROW_READ_ONLY."}
	case errors.Is(err, core.ErrImportInProgress):
		return []string{"Wait for the running import to finish and try again."}
	case errors.Is(err, core.ErrNotFound):
		return []string{"List the collection to see the available ids."}
	case errors.Is(err, core.ErrInvalidCredentials):
		return []string{"The built-in account is admin / crm123."}
	}
	return nil
}
