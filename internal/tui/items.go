package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func formatAssignee(assignee string) string {
	if assignee == "" {
		return "unassigned"
	}
	return assignee
}

func formatDue(due, now time.Time) string {
	if due.IsZero() {
		return "no due date"
	}
	return humanize.RelTime(due, now, "ago", "from now")
}

func formatTaskSummary(task model.Task, now time.Time) string {
	summary := fmt.Sprintf("%s | %s | %s | %s", task.Title, task.Priority, formatAssignee(task.Assignee), formatDue(task.DueDate, now))
	if task.Overdue(now) {
		summary += " | OVERDUE"
	}
	if !task.Status.Valid() {
		summary += fmt.Sprintf(" | status %q", task.Status)
	}
	return summary
}

// formatGroupTitle turns "in-progress" into "In Progress".
func formatGroupTitle(status model.Status) string {
	words := strings.Split(string(status), "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func formatStats(stats model.Stats) string {
	return fmt.Sprintf("%d total | %d completed | %d pending | %d overdue", stats.Total, stats.Completed, stats.Pending, stats.Overdue)
}

func filterLabel(value string) string {
	if value == "" {
		return "any"
	}
	return value
}

// cycleValue moves delta steps through options, where the empty string
// (no constraint) sits before the first option.
func cycleValue(options []string, current string, delta int) string {
	order := make([]string, 0, len(options)+1)
	order = append(order, "")
	order = append(order, options...)

	index := 0
	for i, option := range order {
		if option == current {
			index = i
			break
		}
	}
	index = (index + delta + len(order)) % len(order)
	return order[index]
}

// cycleOption is cycleValue without the empty entry.
func cycleOption(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	index := 0
	for i, option := range options {
		if option == current {
			index = i
			break
		}
	}
	index = (index + delta + len(options)) % len(options)
	return options[index]
}

func priorityOptions() []string {
	result := make([]string, 0, len(model.Priorities))
	for _, priority := range model.Priorities {
		result = append(result, string(priority))
	}
	return result
}

func statusOptions() []string {
	result := make([]string, 0, len(model.Statuses))
	for _, status := range model.Statuses {
		result = append(result, string(status))
	}
	return result
}

func sortOptions() []string {
	result := make([]string, 0, len(model.SortKeys))
	for _, key := range model.SortKeys {
		result = append(result, string(key))
	}
	return result
}
