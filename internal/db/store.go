package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskmaster/internal/model"
	"github.com/Joseda-hg/taskmaster/internal/snapshot"
)

// tasksKey is the kv row holding the task snapshot.
const tasksKey = "tasks"

// Store keeps the whole task collection as one snapshot row and records a
// per-task history alongside it.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Load returns the stored collection. Missing or unreadable data yields an
// empty collection; only database failures are returned as errors.
func (s *Store) Load(ctx context.Context) ([]model.Task, error) {
	var data []byte
	err := s.DB.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", tasksKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	tasks, err := snapshot.Decode(data)
	if err != nil {
		log.WithError(err).WithField("kept", len(tasks)).Warn("stored task data was partly unreadable")
	}
	return tasks, nil
}

// Save overwrites the stored collection.
func (s *Store) Save(ctx context.Context, tasks []model.Task) error {
	data, err := snapshot.Encode(tasks)
	if err != nil {
		return err
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		tasksKey, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (s *Store) RecordHistory(ctx context.Context, entry model.HistoryEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO history (task_id, event_type, details, created_at) VALUES (?, ?, ?, ?)",
		entry.TaskID, entry.EventType, entry.Details, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// ListHistory returns the history of a task, newest first.
func (s *Store) ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, task_id, event_type, details, created_at FROM history WHERE task_id = ? ORDER BY created_at DESC, id DESC",
		taskID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	history := make([]model.HistoryEntry, 0)
	for rows.Next() {
		var entry model.HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.EventType, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}
