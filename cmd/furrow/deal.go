package main

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/crm"
)

var (
	dealName     string
	dealClientID string
	dealStage    string
	dealValue    string
)

var dealCmd = &cobra.Command{
	Use:   "deal",
	Short: "Manage deals and the sales pipeline",
}

var dealAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a deal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			value, err := parseAmountFlag(dealValue)
			if err != nil {
				return err
			}
			deal, err := ws.Deals.Add(ctx, crm.Deal{
				Name:     dealName,
				ClientID: dealClientID,
				Stage:    crm.Stage(dealStage),
				Value:    value,
			})
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Deal '%s' added with id %s.\n", deal.Name, deal.ID)
			return nil
		})
	},
}

var dealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			deals, err := ws.Deals.List(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), deals)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tCLIENT\tSTAGE\tVALUE")
			for _, d := range deals {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, orDash(d.Client), d.Stage, formatMoney(d.Value))
			}
			return tw.Flush()
		})
	},
}

var dealEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a deal; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			deal, err := ws.Deals.Get(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				deal.Name = dealName
			}
			if flags.Changed("client") {
				deal.ClientID = dealClientID
			}
			if flags.Changed("stage") {
				deal.Stage = crm.Stage(dealStage)
			}
			if flags.Changed("value") {
				if deal.Value, err = parseAmountFlag(dealValue); err != nil {
					return err
				}
			}

			deal, err = ws.Deals.Edit(ctx, deal)
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Deal '%s' updated.\n", deal.ID)
			return nil
		})
	},
}

var dealMoveCmd = &cobra.Command{
	Use:   "move <id> <stage> [position]",
	Short: "Move a deal to a stage, optionally at a position within it",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		position := math.MaxInt // end of the column
		if len(args) == 3 {
			p, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[2], err)
			}
			position = p
		}
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			deal, err := ws.Deals.Move(ctx, args[0], crm.Stage(args[1]), position)
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Deal '%s' moved to %s.\n", deal.ID, deal.Stage)
			return nil
		})
	},
}

var dealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a deal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			if err := ws.Deals.Delete(ctx, args[0]); err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Deal '%s' deleted.\n", args[0])
			return nil
		})
	},
}

var dealBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show deals grouped by pipeline stage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			columns, err := ws.Deals.ByStage(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), columns)
			}
			w := cmd.OutOrStdout()
			for _, col := range columns {
				fmt.Fprintf(w, "%s (%d, %s)\n", col.Stage, len(col.Deals), formatMoney(col.Total))
				for i, d := range col.Deals {
					fmt.Fprintf(w, "  %d. [%s] %s  %s  %s\n", i, d.ID, d.Name, orDash(d.Client), formatMoney(d.Value))
				}
			}
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{dealAddCmd, dealEditCmd} {
		c.Flags().StringVar(&dealName, "name", "", "Deal name")
		c.Flags().StringVar(&dealClientID, "client", "", "Client id")
		c.Flags().StringVar(&dealStage, "stage", "", "Leads, Negotiation, Won or Lost")
		c.Flags().StringVar(&dealValue, "value", "", "Deal value")
	}

	dealCmd.AddCommand(dealAddCmd, dealListCmd, dealEditCmd, dealMoveCmd, dealDeleteCmd, dealBoardCmd)
	rootCmd.AddCommand(dealCmd)
}
