package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func formatCreatedDetails(task model.Task) string {
	return fmt.Sprintf("created: title='%s' assignee=%s status=%s priority=%s due=%s", task.Title, valueOrNone(task.Assignee), task.Status, task.Priority, formatDue(task.DueDate))
}

func formatDeletedDetails(task model.Task) string {
	return fmt.Sprintf("deleted: title='%s' assignee=%s status=%s priority=%s due=%s", task.Title, valueOrNone(task.Assignee), task.Status, task.Priority, formatDue(task.DueDate))
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Assignee != after.Assignee {
		changes = append(changes, formatChange("assignee", before.Assignee, after.Assignee))
	}
	if before.Status != after.Status {
		changes = append(changes, formatChange("status", string(before.Status), string(after.Status)))
	}
	if before.Priority != after.Priority {
		changes = append(changes, formatChange("priority", string(before.Priority), string(after.Priority)))
	}
	if formatDue(before.DueDate) != formatDue(after.DueDate) {
		changes = append(changes, formatChange("due", formatDue(before.DueDate), formatDue(after.DueDate)))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatDue(value time.Time) string {
	if value.IsZero() {
		return "none"
	}
	return value.Format("2006-01-02 15:04")
}
