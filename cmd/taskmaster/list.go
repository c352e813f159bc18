package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/model"
)

type listOptions struct {
	search   string
	priority string
	assignee string
	status   string
	sortBy   string
	json     bool
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer env.close()

			filter := model.FilterSpec{
				Search:   opts.search,
				Priority: model.Priority(opts.priority),
				Assignee: opts.assignee,
				Status:   model.Status(opts.status),
				SortBy:   model.SortKey(opts.sortBy),
			}.Trimmed()
			if filter.SortBy == "" {
				filter.SortBy = env.cfg.DefaultSort
			}

			if opts.json {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(env.state.Apply(filter))
			}
			return printGroups(cmd.OutOrStdout(), env.state, filter, time.Now())
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "match title or assignee, case-insensitive")
	cmd.Flags().StringVarP(&opts.priority, "priority", "p", "", "only this priority (P1-P4)")
	cmd.Flags().StringVarP(&opts.assignee, "assignee", "a", "", "only this assignee")
	cmd.Flags().StringVar(&opts.status, "status", "", "only this status (pending, in-progress, completed)")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "dueDate, priority, assignee or createdAt")
	cmd.Flags().BoolVarP(&opts.json, "json", "j", false, "output the filtered list as JSON")

	return cmd
}

func printGroups(out io.Writer, state *app.State, filter model.FilterSpec, now time.Time) error {
	groups := state.GroupsFor(filter)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, section := range groups.Sections() {
		name := string(section.Status)
		if name == "" {
			name = "other"
		}
		fmt.Fprintf(w, "%s (%d)\n", name, len(section.Tasks))
		for _, task := range section.Tasks {
			due := "no due date"
			if !task.DueDate.IsZero() {
				due = humanize.RelTime(task.DueDate, now, "ago", "from now")
			}
			marker := ""
			if task.Overdue(now) {
				marker = "OVERDUE"
			}
			assignee := task.Assignee
			if assignee == "" {
				assignee = "-"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\n", task.ID, task.Title, task.Priority, assignee, due, marker)
		}
	}
	return w.Flush()
}
