package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

var (
	clientName   string
	clientEmail  string
	clientPhone  string
	clientStatus string
	clientValue  string

	listSearch string
	listStatus string
	listSort   string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients",
}

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			value, err := parseAmountFlag(clientValue)
			if err != nil {
				return err
			}
			client, err := ws.Clients.Add(ctx, crm.Client{
				Name:   clientName,
				Email:  clientEmail,
				Phone:  clientPhone,
				Status: crm.ClientStatus(clientStatus),
				Value:  value,
			})
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Client '%s' added with id %s.\n", client.Name, client.ID)
			return nil
		})
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			clients, err := ws.Clients.List(ctx)
			if err != nil {
				return err
			}
			clients = filterClients(clients, listSearch, listStatus)
			if err := sortClients(clients, listSort); err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), clients)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tSTATUS\tVALUE")
			for _, c := range clients {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.Status, formatMoney(c.Value))
			}
			return tw.Flush()
		})
	},
}

var clientEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a client; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			client, err := ws.Clients.Get(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				client.Name = clientName
			}
			if flags.Changed("email") {
				client.Email = clientEmail
			}
			if flags.Changed("phone") {
				client.Phone = clientPhone
			}
			if flags.Changed("status") {
				client.Status = crm.ClientStatus(clientStatus)
			}
			if flags.Changed("value") {
				if client.Value, err = parseAmountFlag(clientValue); err != nil {
					return err
				}
			}

			client, err = ws.Clients.Edit(ctx, client)
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Client '%s' updated.\n", client.ID)
			return nil
		})
	},
}

var clientDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a client (its deals, tasks and notes are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			if err := ws.Clients.Delete(ctx, args[0]); err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Client '%s' deleted.\n", args[0])
			return nil
		})
	},
}

var clientShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a client with its deals, tasks and notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			details, err := ws.ClientDetails(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), details)
			}

			w := cmd.OutOrStdout()
			c := details.Client
			fmt.Fprintf(w, "%s (%s)\n", c.Name, c.Status)
			fmt.Fprintf(w, "  Email: %s\n  Phone: %s\n  Value: %s\n", c.Email, c.Phone, formatMoney(c.Value))

			fmt.Fprintf(w, "\nDeals (%d)\n", len(details.Deals))
			for _, d := range details.Deals {
				fmt.Fprintf(w, "  [%s] %s  %s  %s\n", d.ID, d.Name, d.Stage, formatMoney(d.Value))
			}
			fmt.Fprintf(w, "\nTasks (%d)\n", len(details.Tasks))
			for _, t := range details.Tasks {
				fmt.Fprintf(w, "  [%s] %s  due %s  %s\n", t.ID, t.Title, orDash(t.DueDate.String()), t.Status)
			}
			fmt.Fprintf(w, "\nNotes (%d)\n", len(details.Notes))
			for _, n := range details.Notes {
				fmt.Fprintf(w, "  %s  %s\n", n.Date, n.Text)
			}
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{clientAddCmd, clientEditCmd} {
		c.Flags().StringVar(&clientName, "name", "", "Client name")
		c.Flags().StringVar(&clientEmail, "email", "", "Email address")
		c.Flags().StringVar(&clientPhone, "phone", "", "Phone number")
		c.Flags().StringVar(&clientStatus, "status", "", "Active, Lost or High Value")
		c.Flags().StringVar(&clientValue, "value", "", "Client value")
	}
	clientListCmd.Flags().StringVar(&listSearch, "search", "", "Filter by name or email (case-insensitive)")
	clientListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	clientListCmd.Flags().StringVar(&listSort, "sort", "", "Sort by name or value")

	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientEditCmd, clientDeleteCmd, clientShowCmd)
	rootCmd.AddCommand(clientCmd)
}

// filterClients keeps clients whose name or email contains search and whose
// status equals status. Empty criteria match everything.
func filterClients(clients []crm.Client, search, status string) []crm.Client {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]crm.Client, 0, len(clients))
	for _, c := range clients {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		if status != "" && !strings.EqualFold(string(c.Status), status) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sortClients orders clients by name (locale-aware, ascending) or by value
// (descending). An empty field keeps stored order.
func sortClients(clients []crm.Client, field string) error {
	switch field {
	case "":
	case "name":
		col := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(clients, func(a, b crm.Client) int {
			return col.CompareString(a.Name, b.Name)
		})
	case "value":
		slices.SortStableFunc(clients, func(a, b crm.Client) int {
			return b.Value.Cmp(a.Value.Decimal)
		})
	default:
		return fmt.Errorf("unknown sort field %q (use name or value): %w", field, core.ErrValidation)
	}
	return nil
}

func parseAmountFlag(s string) (crm.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return crm.Amount{}, nil
	}
	a, err := crm.ParseAmount(strings.TrimSpace(s))
	if err != nil {
		return crm.Amount{}, fmt.Errorf("%w: %w", err, core.ErrValidation)
	}
	return a, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
