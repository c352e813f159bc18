// Package query turns the raw task collection into the ordered, filtered and
// grouped views the renderers display. Every function is pure: inputs are
// never modified and no state is kept between calls.
package query

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

// unknownPriorityRank places unrecognised priorities after P4.
const unknownPriorityRank = 5

type Engine struct {
	locale language.Tag
	now    func() time.Time
}

type Option func(*Engine)

// WithLocale sets the collation locale used when sorting by assignee.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

// WithClock replaces the wall clock used for overdue checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{locale: language.English, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

func FilterAndSort(tasks []model.Task, spec model.FilterSpec) []model.Task {
	return defaultEngine.FilterAndSort(tasks, spec)
}

func GroupByStatus(tasks []model.Task) Groups {
	return defaultEngine.GroupByStatus(tasks)
}

func ComputeStats(tasks []model.Task) model.Stats {
	return defaultEngine.ComputeStats(tasks)
}

func Assignees(tasks []model.Task) []string {
	return defaultEngine.Assignees(tasks)
}

// FilterAndSort keeps the tasks matching every constraint set in spec and
// orders them by spec.SortBy. Tasks with equal sort keys keep their input order.
func (e *Engine) FilterAndSort(tasks []model.Task, spec model.FilterSpec) []model.Task {
	fold := cases.Fold()
	search := fold.String(spec.Search)

	result := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if search != "" &&
			!strings.Contains(fold.String(task.Title), search) &&
			!strings.Contains(fold.String(task.Assignee), search) {
			continue
		}
		if spec.Priority != "" && task.Priority != spec.Priority {
			continue
		}
		if spec.Assignee != "" && task.Assignee != spec.Assignee {
			continue
		}
		if spec.Status != "" && task.Status != spec.Status {
			continue
		}
		result = append(result, task)
	}

	slices.SortStableFunc(result, e.comparator(spec.SortBy))
	return result
}

func (e *Engine) comparator(sortBy model.SortKey) func(a, b model.Task) int {
	switch sortBy {
	case model.SortByDueDate:
		return func(a, b model.Task) int {
			return a.DueDate.Compare(b.DueDate)
		}
	case model.SortByPriority:
		return func(a, b model.Task) int {
			return priorityRank(a.Priority) - priorityRank(b.Priority)
		}
	case model.SortByAssignee:
		collator := collate.New(e.locale)
		return func(a, b model.Task) int {
			return collator.CompareString(a.Assignee, b.Assignee)
		}
	default:
		return func(a, b model.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

func priorityRank(p model.Priority) int {
	if rank := p.Rank(); rank != 0 {
		return rank
	}
	return unknownPriorityRank
}

// Groups holds tasks partitioned by status. The three known buckets are
// always present; tasks with an unrecognised status land in Other.
type Groups struct {
	Pending    []model.Task `json:"pending"`
	InProgress []model.Task `json:"inProgress"`
	Completed  []model.Task `json:"completed"`
	Other      []model.Task `json:"other"`
}

type Section struct {
	Status model.Status
	Tasks  []model.Task
}

// GroupByStatus partitions tasks by status, preserving relative order within
// each bucket.
func (e *Engine) GroupByStatus(tasks []model.Task) Groups {
	groups := Groups{
		Pending:    make([]model.Task, 0),
		InProgress: make([]model.Task, 0),
		Completed:  make([]model.Task, 0),
		Other:      make([]model.Task, 0),
	}
	for _, task := range tasks {
		switch task.Status {
		case model.StatusPending:
			groups.Pending = append(groups.Pending, task)
		case model.StatusInProgress:
			groups.InProgress = append(groups.InProgress, task)
		case model.StatusCompleted:
			groups.Completed = append(groups.Completed, task)
		default:
			groups.Other = append(groups.Other, task)
		}
	}
	return groups
}

// Bucket returns the tasks for a known status, or the Other bucket for
// anything else.
func (g Groups) Bucket(status model.Status) []model.Task {
	switch status {
	case model.StatusPending:
		return g.Pending
	case model.StatusInProgress:
		return g.InProgress
	case model.StatusCompleted:
		return g.Completed
	default:
		return g.Other
	}
}

func (g Groups) Len() int {
	return len(g.Pending) + len(g.InProgress) + len(g.Completed) + len(g.Other)
}

// Sections lists the three status buckets in display order, followed by the
// Other bucket (with an empty Status) when it holds anything.
func (g Groups) Sections() []Section {
	sections := make([]Section, 0, len(model.Statuses)+1)
	for _, status := range model.Statuses {
		sections = append(sections, Section{Status: status, Tasks: g.Bucket(status)})
	}
	if len(g.Other) > 0 {
		sections = append(sections, Section{Tasks: g.Other})
	}
	return sections
}

// ComputeStats counts tasks by status and counts overdue tasks against the
// engine clock at call time.
func (e *Engine) ComputeStats(tasks []model.Task) model.Stats {
	return ComputeStatsAt(tasks, e.now())
}

func ComputeStatsAt(tasks []model.Task, now time.Time) model.Stats {
	stats := model.Stats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusPending:
			stats.Pending++
		case model.StatusInProgress:
			stats.InProgress++
		}
		if task.Overdue(now) {
			stats.Overdue++
		}
	}
	return stats
}

// Assignees returns the distinct non-empty assignees in collation order.
func (e *Engine) Assignees(tasks []model.Task) []string {
	seen := make(map[string]struct{}, len(tasks))
	result := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if task.Assignee == "" {
			continue
		}
		if _, ok := seen[task.Assignee]; ok {
			continue
		}
		seen[task.Assignee] = struct{}{}
		result = append(result, task.Assignee)
	}
	collate.New(e.locale).SortStrings(result)
	return result
}
