package db

import (
	"context"
	"testing"
	"time"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

func TestLoadEmptyStoreReturnsNoTasks(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", tasks)
	}
}

func TestSaveOverwritesSnapshot(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	due := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	first := []model.Task{
		{ID: "a", Title: "First", Priority: model.PriorityP1, Status: model.StatusPending, DueDate: due},
		{ID: "b", Title: "Second", Priority: model.PriorityP2, Status: model.StatusCompleted, DueDate: due},
	}
	if err := store.Save(context.Background(), first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := []model.Task{{ID: "c", Title: "Only", Assignee: "Bob", Priority: model.PriorityP3, Status: model.StatusInProgress, DueDate: due}}
	if err := store.Save(context.Background(), second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 task after overwrite, got %d", len(loaded))
	}
	if loaded[0].ID != "c" || loaded[0].Assignee != "Bob" || loaded[0].Status != model.StatusInProgress {
		t.Fatalf("unexpected task %#v", loaded[0])
	}
	if !loaded[0].DueDate.Equal(due) {
		t.Fatalf("expected due %v, got %v", due, loaded[0].DueDate)
	}
}

func TestLoadCorruptSnapshotReturnsEmpty(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	if _, err := store.DB.Exec("INSERT INTO kv (key, value) VALUES (?, ?)", tasksKey, []byte("{broken")); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	tasks, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %d tasks", len(tasks))
	}
}

func TestHistoryListsNewestFirst(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.HistoryEntry{
		{TaskID: "a", EventType: "created", Details: "created", CreatedAt: base},
		{TaskID: "b", EventType: "created", Details: "other task", CreatedAt: base},
		{TaskID: "a", EventType: "updated", Details: "updated: status", CreatedAt: base.Add(time.Minute)},
	}
	for _, entry := range entries {
		if err := store.RecordHistory(context.Background(), entry); err != nil {
			t.Fatalf("record history: %v", err)
		}
	}

	history, err := store.ListHistory(context.Background(), "a")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].EventType != "updated" || history[1].EventType != "created" {
		t.Fatalf("expected newest first, got %q then %q", history[0].EventType, history[1].EventType)
	}
	if history[0].ID == 0 {
		t.Fatalf("expected history ID to be set")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}
