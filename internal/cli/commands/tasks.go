package commands

import (
	"fmt"
	"time"

	"github.com/kamy/api/internal/cli/api"
	"github.com/kamy/api/internal/cli/output"
	"github.com/spf13/cobra"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List, create and complete tasks",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <group-id>",
			Short: "List a group's tasks, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				tasks, err := a.client.GroupTasks(args[0])
				if err != nil {
					return fmt.Errorf("listing tasks: %w", err)
				}
				a.print(tasks, func() { output.TaskTable(tasks) })
				return nil
			}),
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List tasks assigned to you, pending first",
			Args:  cobra.NoArgs,
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				tasks, err := a.client.MyTasks()
				if err != nil {
					return fmt.Errorf("listing tasks: %w", err)
				}
				a.print(tasks, func() { output.TaskTable(tasks) })
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <task-id>",
			Short: "Show a task's details",
			Args:  cobra.ExactArgs(1),
			RunE: a.authed(func(cmd *cobra.Command, args []string) error {
				task, err := a.client.Task(args[0])
				if err != nil {
					return fmt.Errorf("fetching task: %w", err)
				}
				a.print(task, func() { output.TaskDetail(*task) })
				return nil
			}),
		},
		a.createTaskCmd(),
		a.statusCmd("done", "done", "Mark a task as done"),
		a.statusCmd("reopen", "pending", "Move a task back to pending"),
	)
	return cmd
}

func (a *app) createTaskCmd() *cobra.Command {
	var req api.CreateTaskRequest

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task in a group and assign it to a member",
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			if _, err := time.Parse("2006-01-02", req.DueDate); err != nil {
				return fmt.Errorf("--due must be in YYYY-MM-DD format")
			}

			task, err := a.client.CreateTask(req)
			if err != nil {
				return fmt.Errorf("creating task: %w", err)
			}
			a.print(task, func() {
				output.Printf("Created task %q (%s), due %s\n", task.Title, task.ID, task.DueDate)
			})
			return nil
		}),
	}
	cmd.Flags().StringVar(&req.GroupID, "group", "", "Group id")
	cmd.Flags().StringVar(&req.AssignedTo, "assignee", "", "Assignee user id (must be a group member)")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "Due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.Description, "description", "", "Optional description")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("assignee")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func (a *app) statusCmd(use, status, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.authed(func(cmd *cobra.Command, args []string) error {
			task, err := a.client.SetTaskStatus(args[0], status)
			if err != nil {
				return fmt.Errorf("updating task: %w", err)
			}
			a.print(task, func() {
				output.Printf("Task %q is now %s\n", task.Title, task.Status)
			})
			return nil
		}),
	}
}
