package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/pkg/crm"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show pipeline and task figures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			r, err := ws.Report(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), r)
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Clients\t%d\n", r.TotalClients)
			fmt.Fprintf(tw, "Deals\t%d\n", r.TotalDeals)
			for _, s := range crm.Stages {
				fmt.Fprintf(tw, "  %s\t%d\n", s, r.DealsByStage[s])
			}
			fmt.Fprintf(tw, "Conversion\t%.1f%%\n", r.ConversionRate*100)
			fmt.Fprintf(tw, "Won revenue\t%s\n", formatMoney(r.WonRevenue))
			fmt.Fprintf(tw, "Pipeline\t%s\n", formatMoney(r.PipelineValue))
			fmt.Fprintf(tw, "Tasks\t%d pending, %d completed\n", r.PendingTasks, r.CompletedTasks)
			if len(r.TopClients) > 0 {
				fmt.Fprintf(tw, "Top clients\t\n")
				for i, c := range r.TopClients {
					fmt.Fprintf(tw, "  %d. %s\t%s\n", i+1, c.Name, formatMoney(c.Total))
				}
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
