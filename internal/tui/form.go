package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskmaster/internal/app"
	"github.com/Joseda-hg/taskmaster/internal/model"
)

type formField struct {
	Label string
	Value string
}

const (
	fieldTitle = iota
	fieldAssignee
	fieldPriority
	fieldStatus
	fieldDue
)

func buildFormFields(task *model.Task, now time.Time) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Assignee"},
		{Label: "Priority (space/←→)"},
		{Label: "Status (space/←→)"},
		{Label: "Due (YYYY-MM-DD [HH:MM])"},
	}

	if task == nil {
		fields[fieldPriority].Value = string(model.PriorityP3)
		fields[fieldStatus].Value = string(model.StatusPending)
		fields[fieldDue].Value = now.AddDate(0, 0, 1).Format("2006-01-02")
		return fields
	}

	fields[fieldTitle].Value = task.Title
	fields[fieldAssignee].Value = task.Assignee
	fields[fieldPriority].Value = string(task.Priority)
	fields[fieldStatus].Value = string(task.Status)
	if !task.DueDate.IsZero() {
		fields[fieldDue].Value = task.DueDate.Local().Format("2006-01-02 15:04")
	}

	return fields
}

func parseFormFields(fields []formField) (app.TaskInput, error) {
	title := strings.TrimSpace(fields[fieldTitle].Value)
	if title == "" {
		return app.TaskInput{}, fmt.Errorf("%w: title is required", app.ErrInvalidTask)
	}

	dueDate, err := app.ParseDue(fields[fieldDue].Value)
	if err != nil {
		return app.TaskInput{}, err
	}

	return app.TaskInput{
		Title:    title,
		Assignee: strings.TrimSpace(fields[fieldAssignee].Value),
		Priority: model.Priority(strings.TrimSpace(fields[fieldPriority].Value)),
		Status:   model.Status(strings.TrimSpace(fields[fieldStatus].Value)),
		DueDate:  dueDate,
	}, nil
}

func isPriorityField(label string) bool {
	return strings.HasPrefix(label, "Priority")
}

func isStatusField(label string) bool {
	return strings.HasPrefix(label, "Status")
}
