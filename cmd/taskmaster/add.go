package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/model"
)

type addOptions struct {
	title    string
	assignee string
	priority string
	status   string
	due      string
}

func newAddCmd(root *rootOptions) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add [sentence]",
		Short: "Add a task",
		Long: `Add a task without opening the terminal UI.

The task can be described in one sentence: "for <Name>" sets the assignee,
P1-P4 sets the priority and "by tomorrow 3pm", "today" or "next friday" set the
due date. Flags override whatever the sentence says.

Examples:
  taskmaster add "Review proposal for John by tomorrow 3pm p1"
  taskmaster add --title "Write report" --assignee Alice --priority P1 --due 2025-03-01
  taskmaster add --title "Call Bob" --due "2025-03-01 14:30"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := opts.input(cmd, args, time.Now())
			if err != nil {
				return err
			}

			env, err := setup(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer env.close()

			task, err := env.state.Add(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task Added: %q has been added to your tasks (%s).\n", task.Title, task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&opts.assignee, "assignee", "a", "", "assignee")
	cmd.Flags().StringVarP(&opts.priority, "priority", "p", "P3", "priority (P1-P4)")
	cmd.Flags().StringVar(&opts.status, "status", "pending", "status")
	cmd.Flags().StringVarP(&opts.due, "due", "d", "", "due date, YYYY-MM-DD or \"YYYY-MM-DD HH:MM\" (default tomorrow)")

	return cmd
}

// input merges the optional sentence with the flags. Flags left at their
// defaults do not override what the sentence says.
func (opts *addOptions) input(cmd *cobra.Command, args []string, now time.Time) (app.TaskInput, error) {
	flags := cmd.Flags()
	input := app.TaskInput{}
	if len(args) > 0 {
		parsed, err := app.ParseTaskText(args[0], now)
		if err != nil && !flags.Changed("title") {
			return app.TaskInput{}, err
		}
		if err == nil {
			input = parsed
		}
	} else if !flags.Changed("title") {
		return app.TaskInput{}, fmt.Errorf("%w: give a sentence or --title", app.ErrInvalidTask)
	}

	if flags.Changed("title") {
		input.Title = opts.title
	}
	if flags.Changed("assignee") {
		input.Assignee = opts.assignee
	}
	if flags.Changed("priority") || input.Priority == "" {
		input.Priority = model.Priority(opts.priority)
	}
	if flags.Changed("status") || input.Status == "" {
		input.Status = model.Status(opts.status)
	}
	if flags.Changed("due") || input.DueDate.IsZero() {
		due := opts.due
		if due == "" {
			due = now.AddDate(0, 0, 1).Format("2006-01-02")
		}
		dueDate, err := app.ParseDue(due)
		if err != nil {
			return app.TaskInput{}, err
		}
		input.DueDate = dueDate
	}
	return input, nil
}
