package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/crm"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage client notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <client-id> <text...>",
	Short: "Add a note to a client",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			note, err := ws.Notes.Add(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Note added at %s.\n", note.Date)
			return nil
		})
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list <client-id>",
	Short: "List the notes of a client, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			notes, err := ws.Notes.List(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), notes)
			}
			for _, n := range notes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", n.Date, n.Text)
			}
			return nil
		})
	},
}

func init() {
	noteCmd.AddCommand(noteAddCmd, noteListCmd)
	rootCmd.AddCommand(noteCmd)
}
