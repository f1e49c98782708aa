package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/crm"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:       "export <clients|deals|tasks>",
	Short:     "Export a collection to CSV",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{crm.KeyClients, crm.KeyDeals, crm.KeyTasks},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			var path string
			var err error
			switch args[0] {
			case crm.KeyClients:
				path = orDefault(exportOut, crm.ClientsFile)
				err = ws.ExportClients(ctx, path)
			case crm.KeyDeals:
				path = orDefault(exportOut, crm.DealsFile)
				err = ws.ExportDeals(ctx, path)
			case crm.KeyTasks:
				path = orDefault(exportOut, crm.TasksFile)
				err = ws.ExportTasks(ctx, path)
			}
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Exported %s to %s.\n", args[0], path)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:       "import <clients|deals|tasks> <file.csv>",
	Short:     "Append the rows of a CSV file to a collection",
	Long:      `Rows are always appended: importing the same file twice creates duplicates.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{crm.KeyClients, crm.KeyDeals, crm.KeyTasks},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			var res crm.ImportResult
			var err error
			switch args[0] {
			case crm.KeyClients:
				_, res, err = ws.ImportClients(ctx, args[1])
			case crm.KeyDeals:
				_, res, err = ws.ImportDeals(ctx, args[1])
			case crm.KeyTasks:
				_, res, err = ws.ImportTasks(ctx, args[1])
			default:
				return fmt.Errorf("unknown collection %q", args[0])
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printer.Success(cmd.OutOrStdout(), "Imported %d %s (%d skipped, %d ids reassigned).\n",
				res.Added, args[0], res.Skipped, res.Reassigned)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <collection>.csv)")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
