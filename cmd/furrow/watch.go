package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/adapters/lifecycle"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print changes to collections as they happen (fs adapter)",
	Long: `Watch reports every change to a collection key matching pattern
(doublestar syntax, default "*") until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			watchable, ok := ws.Storage().(core.Watchable)
			if !ok {
				return fmt.Errorf("adapter %q does not support watch", cfg.Adapter)
			}
			events, err := watchable.Watch(ctx, pattern)
			if err != nil {
				return err
			}
			source := lifecycle.NewSource(events, crm.Collections...)
			if err := source.Start(ctx); err != nil {
				return err
			}

			printer.Step(cmd.ErrOrStderr(), "Watching %s for %s (Ctrl+C to stop)\n", cfg.URI(), pattern)
			for e := range source.Events() {
				change, ok := e.(lifecycle.Change)
				if !ok {
					continue
				}
				if jsonOutput {
					if err := printJSON(cmd.OutOrStdout(), change); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", change.At.Format(time.TimeOnly), change)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
