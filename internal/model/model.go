package model

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

// Priorities lists the known priorities from most to least urgent.
var Priorities = []Priority{PriorityP1, PriorityP2, PriorityP3, PriorityP4}

// Rank returns 1 for P1 through 4 for P4, and 0 for anything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	case PriorityP3:
		return 3
	case PriorityP4:
		return 4
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() != 0
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
	SortByAssignee  SortKey = "assignee"
	SortByCreatedAt SortKey = "createdAt"
)

// SortKeys lists the sort keys in the order the UI cycles through them.
var SortKeys = []SortKey{SortByDueDate, SortByPriority, SortByAssignee, SortByCreatedAt}

type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Assignee  string    `json:"assignee"`
	Priority  Priority  `json:"priority"`
	Status    Status    `json:"status"`
	DueDate   time.Time `json:"dueDate"`
	CreatedAt time.Time `json:"createdAt"`
}

// Overdue reports whether the task is not completed and due strictly before now.
func (t Task) Overdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate.Before(now)
}

// FilterSpec is the user's current combination of search text, field
// constraints and sort key. Empty fields place no constraint.
type FilterSpec struct {
	Search   string   `json:"search"`
	Priority Priority `json:"priority"`
	Assignee string   `json:"assignee"`
	Status   Status   `json:"status"`
	SortBy   SortKey  `json:"sortBy"`
}

// Trimmed strips surrounding whitespace from every field. Every input surface
// passes user-typed filters through it before querying.
func (f FilterSpec) Trimmed() FilterSpec {
	return FilterSpec{
		Search:   strings.TrimSpace(f.Search),
		Priority: Priority(strings.TrimSpace(string(f.Priority))),
		Assignee: strings.TrimSpace(f.Assignee),
		Status:   Status(strings.TrimSpace(string(f.Status))),
		SortBy:   SortKey(strings.TrimSpace(string(f.SortBy))),
	}
}

// Active reports whether any field constraint or search text is set.
func (f FilterSpec) Active() bool {
	return f.Search != "" || f.Priority != "" || f.Assignee != "" || f.Status != ""
}

type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    string    `json:"taskId"`
	EventType string    `json:"eventType"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
