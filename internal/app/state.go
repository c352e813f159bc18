// Package app holds the application state shared by the terminal UI and the
// web view: the task collection and the current filter. Every mutation
// replaces the collection and writes the full snapshot before it becomes
// visible to readers.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskmaster/internal/model"
	"github.com/Joseda-hg/taskmaster/internal/query"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrInvalidTask = errors.New("invalid task")
)

// Persister loads and overwrites the whole task collection.
type Persister interface {
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
}

// HistoryRecorder is implemented by persisters that keep a per-task history.
type HistoryRecorder interface {
	RecordHistory(ctx context.Context, entry model.HistoryEntry) error
	ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error)
}

type TaskInput struct {
	Title    string         `json:"title"`
	Assignee string         `json:"assignee"`
	Priority model.Priority `json:"priority"`
	Status   model.Status   `json:"status"`
	DueDate  time.Time      `json:"dueDate"`
}

type State struct {
	store  Persister
	engine *query.Engine
	now    func() time.Time
	newID  func() string

	mu     sync.RWMutex
	tasks  []model.Task
	filter model.FilterSpec
}

type Option func(*State)

func WithEngine(engine *query.Engine) Option {
	return func(s *State) {
		if engine != nil {
			s.engine = engine
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

func WithFilter(filter model.FilterSpec) Option {
	return func(s *State) {
		s.filter = filter
	}
}

// Open builds the state and loads the stored collection. A failing load is
// logged and leaves the collection empty.
func Open(ctx context.Context, store Persister, opts ...Option) *State {
	s := &State{
		store:  store,
		engine: query.New(),
		now:    time.Now,
		newID:  uuid.NewString,
		tasks:  []model.Task{},
		filter: model.FilterSpec{SortBy: model.SortByDueDate},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(ctx); err != nil {
		log.WithError(err).Error("could not load tasks, starting empty")
	}
	return s
}

// Reload replaces the in-memory collection with the stored one.
func (s *State) Reload(ctx context.Context) error {
	tasks, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()

	log.WithField("count", len(tasks)).Debug("tasks loaded")
	return nil
}

// Tasks returns a copy of the full, unfiltered collection.
func (s *State) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

func (s *State) Filter() model.FilterSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *State) SetFilter(filter model.FilterSpec) {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

// View returns the collection filtered and ordered by the current filter.
func (s *State) View() []model.Task {
	return s.Apply(s.Filter())
}

// Apply filters and orders the collection by filter without replacing the
// current one.
func (s *State) Apply(filter model.FilterSpec) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.FilterAndSort(s.tasks, filter)
}

func (s *State) Groups() query.Groups {
	return s.GroupsFor(s.Filter())
}

func (s *State) GroupsFor(filter model.FilterSpec) query.Groups {
	return s.engine.GroupByStatus(s.Apply(filter))
}

// Stats counts over the full collection regardless of the filter.
func (s *State) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.ComputeStats(s.tasks)
}

func (s *State) Assignees() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Assignees(s.tasks)
}

func (s *State) Get(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := indexOf(s.tasks, id)
	if index < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tasks[index], nil
}

func (s *State) Add(ctx context.Context, input TaskInput) (model.Task, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return model.Task{}, err
	}

	task := model.Task{
		ID:        s.newID(),
		Title:     input.Title,
		Assignee:  input.Assignee,
		Priority:  input.Priority,
		Status:    input.Status,
		DueDate:   input.DueDate,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	next := make([]model.Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	next = append(next, task)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}

	s.recordHistory(ctx, task.ID, "created", formatCreatedDetails(task))
	log.WithFields(log.Fields{"id": task.ID, "title": task.Title}).Info("task added")
	return task, nil
}

// Update replaces the task with the same ID. ID and CreatedAt are kept from
// the stored task.
func (s *State) Update(ctx context.Context, id string, input TaskInput) (model.Task, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	index := indexOf(s.tasks, id)
	if index < 0 {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	before := s.tasks[index]
	after := model.Task{
		ID:        before.ID,
		Title:     input.Title,
		Assignee:  input.Assignee,
		Priority:  input.Priority,
		Status:    input.Status,
		DueDate:   input.DueDate,
		CreatedAt: before.CreatedAt,
	}

	next := slices.Clone(s.tasks)
	next[index] = after
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}

	s.recordHistory(ctx, id, "updated", formatTaskDiff(before, after))
	log.WithField("id", id).Debug("task updated")
	return after, nil
}

// SetStatus moves a task to any status; there is no transition graph. Only
// the status is checked, so records loaded with unreadable fields can still be
// moved.
func (s *State) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	status = model.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTask, status)
	}

	s.mu.Lock()
	index := indexOf(s.tasks, id)
	if index < 0 {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	before := s.tasks[index]
	after := before
	after.Status = status

	next := slices.Clone(s.tasks)
	next[index] = after
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return model.Task{}, err
	}

	s.recordHistory(ctx, id, "updated", formatTaskDiff(before, after))
	log.WithFields(log.Fields{"id": id, "status": status}).Debug("task status changed")
	return after, nil
}

func (s *State) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	index := indexOf(s.tasks, id)
	if index < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	before := s.tasks[index]
	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:index]...)
	next = append(next, s.tasks[index+1:]...)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.recordHistory(ctx, id, "deleted", formatDeletedDetails(before))
	log.WithFields(log.Fields{"id": id, "title": before.Title}).Info("task deleted")
	return nil
}

// History returns the task's history, or nothing when the store keeps none.
func (s *State) History(ctx context.Context, id string) ([]model.HistoryEntry, error) {
	recorder, ok := s.store.(HistoryRecorder)
	if !ok {
		return nil, nil
	}
	return recorder.ListHistory(ctx, id)
}

// commit saves next and installs it as the collection. Callers hold s.mu.
func (s *State) commit(ctx context.Context, next []model.Task) error {
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = next
	return nil
}

func (s *State) recordHistory(ctx context.Context, taskID, eventType, details string) {
	recorder, ok := s.store.(HistoryRecorder)
	if !ok {
		return
	}
	entry := model.HistoryEntry{TaskID: taskID, EventType: eventType, Details: details, CreatedAt: s.now()}
	if err := recorder.RecordHistory(ctx, entry); err != nil {
		log.WithError(err).WithField("id", taskID).Warn("could not record task history")
	}
}

// InputFromTask copies the editable fields of a task.
func InputFromTask(task model.Task) TaskInput {
	return TaskInput{
		Title:    task.Title,
		Assignee: task.Assignee,
		Priority: task.Priority,
		Status:   task.Status,
		DueDate:  task.DueDate,
	}
}

func normalizeInput(input TaskInput) TaskInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Assignee = strings.TrimSpace(input.Assignee)
	input.Priority = model.Priority(strings.ToUpper(strings.TrimSpace(string(input.Priority))))
	input.Status = model.Status(strings.ToLower(strings.TrimSpace(string(input.Status))))
	if input.Priority == "" {
		input.Priority = model.PriorityP3
	}
	if input.Status == "" {
		input.Status = model.StatusPending
	}
	return input
}

func validateInput(input TaskInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !input.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, input.Priority)
	}
	if !input.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, input.Status)
	}
	if input.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidTask)
	}
	return nil
}

func indexOf(tasks []model.Task, id string) int {
	return slices.IndexFunc(tasks, func(task model.Task) bool {
		return task.ID == id
	})
}
