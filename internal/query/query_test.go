package query

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func ids(tasks []model.Task) []string {
	result := make([]string, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, task.ID)
	}
	return result
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "A", Title: "Write report", Assignee: "Alice", Priority: model.PriorityP2, Status: model.StatusPending, DueDate: day("2024-01-01"), CreatedAt: day("2023-12-01")},
		{ID: "B", Title: "Review code", Assignee: "Bob", Priority: model.PriorityP1, Status: model.StatusInProgress, DueDate: day("2024-01-03"), CreatedAt: day("2023-12-03")},
		{ID: "C", Title: "Plan sprint", Assignee: "carol", Priority: model.PriorityP4, Status: model.StatusCompleted, DueDate: day("2024-01-02"), CreatedAt: day("2023-12-02")},
	}
}

func TestFilterAndSortOrdering(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name   string
		sortBy model.SortKey
		want   []string
	}{
		{name: "due date ascending", sortBy: model.SortByDueDate, want: []string{"A", "C", "B"}},
		{name: "priority ascending", sortBy: model.SortByPriority, want: []string{"B", "A", "C"}},
		{name: "assignee collated", sortBy: model.SortByAssignee, want: []string{"A", "B", "C"}},
		{name: "created at newest first", sortBy: model.SortByCreatedAt, want: []string{"B", "C", "A"}},
		{name: "unknown key falls back to created at", sortBy: model.SortKey("bogus"), want: []string{"B", "C", "A"}},
		{name: "empty key falls back to created at", sortBy: "", want: []string{"B", "C", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(tasks, model.FilterSpec{SortBy: tt.sortBy})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterAndSortSearchIsCaseInsensitive(t *testing.T) {
	tasks := sampleTasks()

	lower := FilterAndSort(tasks, model.FilterSpec{Search: "ali", SortBy: model.SortByDueDate})
	upper := FilterAndSort(tasks, model.FilterSpec{Search: "ALI", SortBy: model.SortByDueDate})

	assert.Equal(t, []string{"A"}, ids(lower))
	assert.Equal(t, ids(lower), ids(upper))
}

func TestFilterAndSortSearchMatchesTitleOrAssignee(t *testing.T) {
	tasks := sampleTasks()

	byTitle := FilterAndSort(tasks, model.FilterSpec{Search: "SPRINT"})
	assert.Equal(t, []string{"C"}, ids(byTitle))

	byAssignee := FilterAndSort(tasks, model.FilterSpec{Search: "bo"})
	assert.Equal(t, []string{"B"}, ids(byAssignee))

	none := FilterAndSort(tasks, model.FilterSpec{Search: "nothing like this"})
	assert.Empty(t, none)
}

func TestFilterAndSortFieldConstraints(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []string{"B"}, ids(FilterAndSort(tasks, model.FilterSpec{Priority: model.PriorityP1})))
	assert.Equal(t, []string{"C"}, ids(FilterAndSort(tasks, model.FilterSpec{Status: model.StatusCompleted})))
	assert.Equal(t, []string{"A"}, ids(FilterAndSort(tasks, model.FilterSpec{Assignee: "Alice"})))
	assert.Empty(t, FilterAndSort(tasks, model.FilterSpec{Assignee: "alice"}), "assignee filter is exact")

	combined := model.FilterSpec{Search: "r", Priority: model.PriorityP2, Status: model.StatusPending}
	assert.Equal(t, []string{"A"}, ids(FilterAndSort(tasks, combined)))

	conflicting := model.FilterSpec{Priority: model.PriorityP1, Status: model.StatusCompleted}
	assert.Empty(t, FilterAndSort(tasks, conflicting))
}

func TestFilterAndSortUnknownEnumsOnTasks(t *testing.T) {
	tasks := append(sampleTasks(), model.Task{
		ID:        "X",
		Title:     "Corrupted",
		Priority:  model.Priority("P9"),
		Status:    model.Status("archived"),
		DueDate:   day("2023-06-01"),
		CreatedAt: day("2023-01-01"),
	})

	all := FilterAndSort(tasks, model.FilterSpec{SortBy: model.SortByPriority})
	assert.Equal(t, []string{"B", "A", "C", "X"}, ids(all), "unknown priority ranks last")

	for _, priority := range model.Priorities {
		assert.NotContains(t, ids(FilterAndSort(tasks, model.FilterSpec{Priority: priority})), "X")
	}
	for _, status := range model.Statuses {
		assert.NotContains(t, ids(FilterAndSort(tasks, model.FilterSpec{Status: status})), "X")
	}
}

func TestFilterAndSortIsStable(t *testing.T) {
	due := day("2024-05-05")
	tasks := []model.Task{
		{ID: "1", Priority: model.PriorityP2, DueDate: due, CreatedAt: due},
		{ID: "2", Priority: model.PriorityP1, DueDate: due, CreatedAt: due},
		{ID: "3", Priority: model.PriorityP2, DueDate: due, CreatedAt: due},
		{ID: "4", Priority: model.PriorityP1, DueDate: due, CreatedAt: due},
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(FilterAndSort(tasks, model.FilterSpec{SortBy: model.SortByDueDate})))
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(FilterAndSort(tasks, model.FilterSpec{SortBy: model.SortByPriority})))
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(FilterAndSort(tasks, model.FilterSpec{})))
}

func TestFilterAndSortIsIdempotent(t *testing.T) {
	tasks := sampleTasks()
	for _, key := range append(slices.Clone(model.SortKeys), "bogus") {
		spec := model.FilterSpec{Search: "e", SortBy: key}
		once := FilterAndSort(tasks, spec)
		twice := FilterAndSort(once, spec)
		assert.Equal(t, once, twice, "sort key %q", key)
	}
}

func TestFilterAndSortDoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := slices.Clone(tasks)

	_ = FilterAndSort(tasks, model.FilterSpec{SortBy: model.SortByDueDate})
	_ = FilterAndSort(tasks, model.FilterSpec{Search: "bob", SortBy: model.SortByAssignee})
	_ = GroupByStatus(tasks)
	_ = ComputeStats(tasks)

	assert.Equal(t, before, tasks)
}

func TestFilterAndSortZeroTimestamps(t *testing.T) {
	tasks := []model.Task{
		{ID: "set", DueDate: day("2024-01-01")},
		{ID: "zero"},
	}
	got := FilterAndSort(tasks, model.FilterSpec{SortBy: model.SortByDueDate})
	assert.Equal(t, []string{"zero", "set"}, ids(got))
}

func TestAssigneeSortIsLocaleAware(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Assignee: "Zoe"},
		{ID: "2", Assignee: "émile"},
		{ID: "3", Assignee: "bob"},
		{ID: "4", Assignee: "Eve"},
	}
	got := New(WithLocale(language.French)).FilterAndSort(tasks, model.FilterSpec{SortBy: model.SortByAssignee})
	assert.Equal(t, []string{"3", "2", "4", "1"}, ids(got))
}

func TestGroupByStatus(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Status: model.StatusCompleted},
		{ID: "2", Status: model.StatusPending},
		{ID: "3", Status: model.StatusPending},
		{ID: "4", Status: model.Status("archived")},
		{ID: "5", Status: model.StatusCompleted},
	}

	groups := GroupByStatus(tasks)

	assert.Equal(t, []string{"2", "3"}, ids(groups.Pending))
	assert.NotNil(t, groups.InProgress)
	assert.Empty(t, groups.InProgress)
	assert.Equal(t, []string{"1", "5"}, ids(groups.Completed))
	assert.Equal(t, []string{"4"}, ids(groups.Other))
	assert.Equal(t, len(tasks), groups.Len())

	sections := groups.Sections()
	require.Len(t, sections, 4)
	assert.Equal(t, model.StatusPending, sections[0].Status)
	assert.Equal(t, model.StatusInProgress, sections[1].Status)
	assert.Equal(t, model.StatusCompleted, sections[2].Status)
	assert.Equal(t, model.Status(""), sections[3].Status)
}

func TestGroupByStatusEmptyInput(t *testing.T) {
	groups := GroupByStatus(nil)

	assert.Equal(t, 0, groups.Len())
	sections := groups.Sections()
	require.Len(t, sections, 3)
	for _, section := range sections {
		assert.NotNil(t, section.Tasks)
		assert.Empty(t, section.Tasks)
	}
}

func TestGroupByStatusCompleteness(t *testing.T) {
	statuses := []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted, "", "weird"}
	var tasks []model.Task
	for i := 0; i < 25; i++ {
		tasks = append(tasks, model.Task{ID: string(rune('a' + i)), Status: statuses[i%len(statuses)]})
		assert.Equal(t, len(tasks), GroupByStatus(tasks).Len())
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "1", Status: model.StatusPending, DueDate: now.Add(-time.Hour)},
		{ID: "2", Status: model.StatusCompleted, DueDate: now.Add(-time.Hour)},
		{ID: "3", Status: model.StatusInProgress, DueDate: now.Add(-24 * time.Hour)},
		{ID: "4", Status: model.StatusPending, DueDate: now.Add(time.Hour)},
		{ID: "5", Status: model.Status("archived"), DueDate: now.Add(-time.Hour)},
	}

	stats := New(WithClock(func() time.Time { return now })).ComputeStats(tasks)

	assert.Equal(t, model.Stats{Total: 5, Completed: 1, Pending: 2, InProgress: 1, Overdue: 3}, stats)
	assert.LessOrEqual(t, stats.Completed+stats.Pending, stats.Total)
}

func TestComputeStatsOverdueBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	atNow := []model.Task{{ID: "now", Status: model.StatusPending, DueDate: now}}
	assert.Equal(t, 0, ComputeStatsAt(atNow, now).Overdue)

	justPast := []model.Task{{ID: "past", Status: model.StatusPending, DueDate: now.Add(-time.Millisecond)}}
	assert.Equal(t, 1, ComputeStatsAt(justPast, now).Overdue)
}

func TestComputeStatsUsesCallTime(t *testing.T) {
	current := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	engine := New(WithClock(func() time.Time { return current }))
	tasks := []model.Task{{ID: "1", Status: model.StatusPending, DueDate: current.Add(time.Minute)}}

	assert.Equal(t, 0, engine.ComputeStats(tasks).Overdue)
	current = current.Add(2 * time.Minute)
	assert.Equal(t, 1, engine.ComputeStats(tasks).Overdue)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, model.Stats{}, ComputeStats(nil))
}

func TestAssignees(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Assignee: "bob"},
		{ID: "2", Assignee: ""},
		{ID: "3", Assignee: "Alice"},
		{ID: "4", Assignee: "bob"},
	}
	assert.Equal(t, []string{"Alice", "bob"}, Assignees(tasks))
	assert.Empty(t, Assignees(nil))
}
