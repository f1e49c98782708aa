package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/crm"
)

var loginCmd = &cobra.Command{
	Use:   "login <user> <password>",
	Short: "Open a session with the built-in account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			if err := ws.Login(ctx, args[0], args[1]); err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Logged in as %s.\n", args[0])
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Close the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			if err := ws.Logout(ctx); err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Logged out.\n")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Report whether a session is open",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			ok, err := ws.Authenticated(ctx)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), "logged in")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
