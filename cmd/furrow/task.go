package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/printer"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

var (
	taskTitle    string
	taskClientID string
	taskDue      string
	taskStatus   string

	taskForClient string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			due, err := parseDateFlag(taskDue)
			if err != nil {
				return err
			}
			task, err := ws.Tasks.Add(ctx, crm.Task{
				Title:    taskTitle,
				ClientID: taskClientID,
				DueDate:  due,
				Status:   crm.TaskStatus(taskStatus),
			})
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Task '%s' added with id %s.\n", task.Title, task.ID)
			return nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			var tasks []crm.Task
			var err error
			if taskForClient != "" {
				tasks, err = ws.Tasks.ForClient(ctx, taskForClient)
			} else {
				tasks, err = ws.Tasks.List(ctx)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), tasks)
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tTITLE\tCLIENT\tDUE\tSTATUS")
			for _, t := range tasks {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.ClientID, orDash(t.DueDate.String()), t.Status)
			}
			return tw.Flush()
		})
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			task, err := ws.Tasks.Get(ctx, args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				task.Title = taskTitle
			}
			if flags.Changed("client") {
				task.ClientID = taskClientID
			}
			if flags.Changed("due") {
				if task.DueDate, err = parseDateFlag(taskDue); err != nil {
					return err
				}
			}
			if flags.Changed("status") {
				task.Status = crm.TaskStatus(taskStatus)
			}

			task, err = ws.Tasks.Edit(ctx, task)
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Task '%s' updated.\n", task.ID)
			return nil
		})
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			task, err := ws.Tasks.Complete(ctx, args[0])
			if err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Task '%s' completed.\n", task.ID)
			return nil
		})
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws *crm.Workspace) error {
			if err := ws.Tasks.Delete(ctx, args[0]); err != nil {
				return err
			}
			printer.Success(cmd.OutOrStdout(), "Task '%s' deleted.\n", args[0])
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{taskAddCmd, taskEditCmd} {
		c.Flags().StringVar(&taskTitle, "title", "", "Task title")
		c.Flags().StringVar(&taskClientID, "client", "", "Client id")
		c.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
		c.Flags().StringVar(&taskStatus, "status", "", "Pending or Completed")
	}
	taskListCmd.Flags().StringVar(&taskForClient, "client", "", "Only tasks for this client id")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskEditCmd, taskCompleteCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}

func parseDateFlag(s string) (crm.Date, error) {
	d, err := crm.ParseDate(s)
	if err != nil {
		return crm.Date{}, fmt.Errorf("%w: %w", err, core.ErrValidation)
	}
	return d, nil
}
