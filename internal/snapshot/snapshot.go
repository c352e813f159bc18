// Package snapshot encodes the task collection for key-value storage.
//
// Encoded snapshots are versioned JSON objects. Decoding is lenient: the bare
// JSON array written by earlier versions is accepted, unparseable timestamps
// become the zero time, and anything that cannot be read at all decodes to an
// empty collection with a non-nil error describing why.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/taskmaster/internal/model"
)

const Version = 1

type document struct {
	Version int          `json:"version"`
	Tasks   []model.Task `json:"tasks"`
}

type rawTask struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Assignee  string          `json:"assignee"`
	Priority  string          `json:"priority"`
	Status    string          `json:"status"`
	DueDate   json.RawMessage `json:"dueDate"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

type rawDocument struct {
	Version int       `json:"version"`
	Tasks   []rawTask `json:"tasks"`
}

func Encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(document{Version: Version, Tasks: tasks})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode reads a snapshot. It always returns a usable (possibly empty)
// collection; err reports data that had to be discarded.
func Decode(data []byte) ([]model.Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Task{}, nil
	}

	var raw []rawTask
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return []model.Task{}, fmt.Errorf("decode legacy snapshot: %w", err)
		}
	case '{':
		var doc rawDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return []model.Task{}, fmt.Errorf("decode snapshot: %w", err)
		}
		if doc.Version > Version {
			return []model.Task{}, fmt.Errorf("unsupported snapshot version %d", doc.Version)
		}
		raw = doc.Tasks
	default:
		return []model.Task{}, fmt.Errorf("decode snapshot: unexpected leading byte %q", trimmed[0])
	}

	tasks := make([]model.Task, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	dropped := 0
	for _, item := range raw {
		if item.ID == "" {
			dropped++
			continue
		}
		if _, ok := seen[item.ID]; ok {
			dropped++
			continue
		}
		seen[item.ID] = struct{}{}
		tasks = append(tasks, model.Task{
			ID:        item.ID,
			Title:     item.Title,
			Assignee:  item.Assignee,
			Priority:  model.Priority(item.Priority),
			Status:    model.Status(item.Status),
			DueDate:   parseTimestamp(item.DueDate),
			CreatedAt: parseTimestamp(item.CreatedAt),
		})
	}

	if dropped > 0 {
		return tasks, fmt.Errorf("dropped %d tasks with missing or duplicate ids", dropped)
	}
	return tasks, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp accepts a JSON string in one of timestampLayouts or a number
// of epoch milliseconds. Anything else yields the zero time.
func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, text); err == nil {
				return parsed
			}
		}
		return time.Time{}
	}

	if millis, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return time.UnixMilli(millis).UTC()
	}
	return time.Time{}
}
